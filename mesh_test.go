package meshsdf

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// boxSource returns a closed, outward facing box with 8 shared vertices.
func boxSource(name string, center, half r3.Vec) MeshSource {
	var pos []r3.Vec
	for i := 0; i < 8; i++ {
		sx, sy, sz := float64(i&1*2-1), float64(i>>1&1*2-1), float64(i>>2&1*2-1)
		pos = append(pos, r3.Add(center, r3.Vec{X: sx * half.X, Y: sy * half.Y, Z: sz * half.Z}))
	}
	// vertex i has bit 0 for +X, bit 1 for +Y and bit 2 for +Z.
	quads := [][4]uint32{
		{1, 3, 7, 5}, // +X
		{0, 4, 6, 2}, // -X
		{2, 6, 7, 3}, // +Y
		{0, 1, 5, 4}, // -Y
		{4, 5, 7, 6}, // +Z
		{0, 2, 3, 1}, // -Z
	}
	var idx []uint32
	for _, q := range quads {
		idx = append(idx, q[0], q[1], q[2], q[0], q[2], q[3])
	}
	return MeshSource{Name: name, Positions: pos, Indices: idx}
}

// planeSource returns a square facing +Z on the Z=0 plane.
func planeSource(name string, half float64) MeshSource {
	return MeshSource{
		Name: name,
		Positions: []r3.Vec{
			{X: -half, Y: -half}, {X: half, Y: -half}, {X: half, Y: half}, {X: -half, Y: half},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestBoxSourceOutward(t *testing.T) {
	src := boxSource("box", r3.Vec{X: 1}, r3.Vec{X: 1, Y: 2, Z: 3})
	center := r3.Vec{X: 1}
	for i := 0; i < src.NumTriangles(); i++ {
		v, ok := src.triangle(i)
		if !ok {
			t.Fatalf("triangle %d out of range", i)
		}
		n := r3.Cross(r3.Sub(v[1], v[0]), r3.Sub(v[2], v[0]))
		c := r3.Scale(1./3., r3.Add(r3.Add(v[0], v[1]), v[2]))
		if r3.Dot(n, r3.Sub(c, center)) <= 0 {
			t.Errorf("triangle %d faces inward", i)
		}
	}
}

func TestLocalBounds(t *testing.T) {
	src := boxSource("box", r3.Vec{X: 1}, r3.Vec{X: 1, Y: 2, Z: 3})
	b := src.LocalBounds()
	if b.Origin != (r3.Vec{X: 1}) || b.BoxExtent != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("computed bounds %+v", b)
	}
	src.Bounds = BoxSphereBounds{BoxExtent: r3.Vec{X: 5, Y: 5, Z: 5}}
	if src.LocalBounds() != src.Bounds {
		t.Error("explicit bounds must be used as is")
	}
	if !BoundsFromPositions(nil).IsZero() {
		t.Error("bounds of no positions should be zero")
	}
}
