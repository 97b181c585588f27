package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoxIntersectRay(t *testing.T) {
	box := Box{Min: Elem(-1), Max: Elem(1)}
	for _, test := range []struct {
		name        string
		origin, dir r3.Vec
		hit         bool
		t0          float64
	}{
		{"inside", r3.Vec{}, r3.Vec{X: 4}, true, 0},
		{"toward", r3.Vec{X: -3}, r3.Vec{X: 4}, true, 0.5},
		{"away", r3.Vec{X: -3}, r3.Vec{X: -4}, false, 0},
		{"short", r3.Vec{X: -3}, r3.Vec{X: 1}, false, 0},
		{"parallel outside", r3.Vec{Y: 2}, r3.Vec{X: 4}, false, 0},
		{"parallel on face", r3.Vec{X: -3, Y: 1}, r3.Vec{X: 4}, true, 0.5},
		{"diagonal", Elem(-2), Elem(4), true, 0.25},
	} {
		t.Run(test.name, func(t *testing.T) {
			t0, _, ok := box.IntersectRay(test.origin, test.dir, 0, 1)
			if ok != test.hit {
				t.Fatalf("hit: got %v, want %v", ok, test.hit)
			}
			if ok && !EqualWithin(Elem(t0), Elem(test.t0), 1e-12) {
				t.Errorf("entry: got %g, want %g", t0, test.t0)
			}
		})
	}
}

func TestEmptyBoxIntersectRay(t *testing.T) {
	empty := EmptyBox()
	for _, dir := range []r3.Vec{{X: 1, Y: 1, Z: 1}, {X: -2, Y: 0.5, Z: 3}, {Z: 1}} {
		if _, _, ok := empty.IntersectRay(r3.Vec{}, dir, 0, 1); ok {
			t.Errorf("empty box hit by ray along %v", dir)
		}
	}
	flat := Box{Min: r3.Vec{X: -1, Y: -1}, Max: r3.Vec{X: 1, Y: 1}}
	if _, _, ok := flat.IntersectRay(r3.Vec{Z: 1}, r3.Vec{Z: -2}, 0, 1); !ok {
		t.Error("zero thickness box must still be hit")
	}
}

func TestBoxStrictlyContains(t *testing.T) {
	outer := Box{Min: Elem(-2), Max: Elem(2)}
	inner := Box{Min: Elem(-1), Max: Elem(1)}
	if !outer.StrictlyContains(inner) {
		t.Error("outer should contain inner")
	}
	if inner.StrictlyContains(inner) {
		t.Error("a box cannot strictly contain itself")
	}
	touching := Box{Min: r3.Vec{X: -2, Y: -1, Z: -1}, Max: Elem(1)}
	if outer.StrictlyContains(touching) {
		t.Error("touching box is not strictly contained")
	}
}

func TestSetBounds(t *testing.T) {
	if !(Set{}).Bounds().IsEmpty() {
		t.Error("empty set should produce an empty box")
	}
	bb := Set{{X: 1, Y: -2, Z: 3}, {X: -1, Y: 2, Z: 0}}.Bounds()
	want := Box{Min: r3.Vec{X: -1, Y: -2, Z: 0}, Max: r3.Vec{X: 1, Y: 2, Z: 3}}
	if !bb.Equals(want, 0) {
		t.Errorf("got %v, want %v", bb, want)
	}
}
