package accel

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// cube returns the 12 outward facing triangles of an axis aligned cube
// centered at the origin with half side h.
func cube(h float64, tag uint8) []Triangle {
	p := func(x, y, z float64) r3.Vec { return r3.Vec{X: x * h, Y: y * h, Z: z * h} }
	quads := [6][4]r3.Vec{
		{p(1, -1, -1), p(1, 1, -1), p(1, 1, 1), p(1, -1, 1)},     // +X
		{p(-1, -1, -1), p(-1, -1, 1), p(-1, 1, 1), p(-1, 1, -1)}, // -X
		{p(-1, 1, -1), p(-1, 1, 1), p(1, 1, 1), p(1, 1, -1)},     // +Y
		{p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1)}, // -Y
		{p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1)},     // +Z
		{p(-1, -1, -1), p(-1, 1, -1), p(1, 1, -1), p(1, -1, -1)}, // -Z
	}
	var tris []Triangle
	for _, q := range quads {
		tris = append(tris,
			Triangle{V: [3]r3.Vec{q[0], q[1], q[2]}, Tag: tag},
			Triangle{V: [3]r3.Vec{q[0], q[2], q[3]}, Tag: tag},
		)
	}
	return tris
}

func randomSoup(rng *rand.Rand, n int) []Triangle {
	tris := make([]Triangle, n)
	for i := range tris {
		c := r3.Vec{X: rng.Float64()*10 - 5, Y: rng.Float64()*10 - 5, Z: rng.Float64()*10 - 5}
		for j := range tris[i].V {
			tris[i].V[j] = r3.Add(c, r3.Vec{X: rng.Float64() - .5, Y: rng.Float64() - .5, Z: rng.Float64() - .5})
		}
		tris[i].Tag = uint8(i % 2)
	}
	return tris
}

// bruteForce is the reference nearest hit over every triangle.
func bruteForce(tris []Triangle, origin, dir r3.Vec, tMin, tMax float64) (Hit, bool) {
	best := Hit{T: math.Inf(1)}
	for i := range tris {
		t, ok := intersectTriangle(origin, dir, &tris[i])
		if ok && t >= tMin && t <= tMax && t < best.T {
			best = Hit{T: t, Normal: tris[i].Normal(), Tag: tris[i].Tag}
		}
	}
	return best, !math.IsInf(best.T, 1)
}

func TestCubeNormalsOutward(t *testing.T) {
	for i, tri := range cube(1, OneSided) {
		c := r3.Scale(1./3., r3.Add(r3.Add(tri.V[0], tri.V[1]), tri.V[2]))
		if r3.Dot(tri.Normal(), c) <= 0 {
			t.Errorf("triangle %d normal %v points inward", i, tri.Normal())
		}
	}
}

func TestBIHMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tris := randomSoup(rng, 500)
	bih := NewBIH(tris)
	require.Equal(t, len(tris), bih.Len())
	for i := 0; i < 2000; i++ {
		origin := r3.Vec{X: rng.Float64()*14 - 7, Y: rng.Float64()*14 - 7, Z: rng.Float64()*14 - 7}
		dir := r3.Scale(20, r3.Unit(r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}))
		want, wantOK := bruteForce(tris, origin, dir, 0, 1)
		got, gotOK := bih.Intersect(origin, dir, 0, 1)
		if gotOK != wantOK {
			t.Fatalf("ray %d: hit mismatch got %v want %v", i, gotOK, wantOK)
		}
		if !gotOK {
			continue
		}
		if math.Abs(got.T-want.T) > 1e-12 {
			t.Fatalf("ray %d: got t=%g want %g", i, got.T, want.T)
		}
		assert.Equal(t, want.Tag, got.Tag)
	}
}

func TestStructureEmpty(t *testing.T) {
	for _, backend := range []Backend{BackendBIH, BackendCollider} {
		s, err := Build(backend, nil)
		require.NoError(t, err, backend)
		_, ok := s.Intersect(r3.Vec{}, r3.Vec{X: 1}, 0, 1)
		assert.False(t, ok, backend)
		assert.Equal(t, 0, s.Len())
		bb := s.Bounds()
		assert.True(t, bb.Min.X > bb.Max.X, "empty structure bounds should be inverted")
	}
}

func TestBackendsAgree(t *testing.T) {
	tris := cube(1, OneSided)
	tris = append(tris, Triangle{V: [3]r3.Vec{{X: -3, Y: -3, Z: 2}, {X: 3, Y: -3, Z: 2}, {X: 0, Y: 3, Z: 2}}, Tag: TwoSided})
	bih, err := Build(BackendBIH, tris)
	require.NoError(t, err)
	col, err := Build(BackendCollider, tris)
	require.NoError(t, err)

	for _, test := range []struct {
		name        string
		origin, dir r3.Vec
		t           float64
		normal      r3.Vec
		tag         uint8
	}{
		{"outside +x", r3.Vec{X: 3, Y: 0.3, Z: -0.2}, r3.Vec{X: -4}, 0.5, r3.Vec{X: 1}, OneSided},
		{"inside backface", r3.Vec{X: 0.3, Z: -0.2}, r3.Vec{Y: -4}, 0.25, r3.Vec{Y: -1}, OneSided},
		{"two sided roof", r3.Vec{Z: 1.5}, r3.Vec{Z: 1}, 0.5, r3.Vec{Z: 1}, TwoSided},
	} {
		for _, s := range []Structure{bih, col} {
			hit, ok := s.Intersect(test.origin, test.dir, 0, 1)
			require.True(t, ok, test.name)
			assert.InDelta(t, test.t, hit.T, 1e-9, test.name)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(hit.Normal, test.normal)), 1e-9, test.name)
			assert.Equal(t, test.tag, hit.Tag, test.name)
		}
	}

	// segment too short to reach the cube.
	for _, s := range []Structure{bih, col} {
		_, ok := s.Intersect(r3.Vec{X: 3, Y: 0.3}, r3.Vec{X: -1}, 0, 1)
		assert.False(t, ok)
	}
}

func TestColliderRejectsNonFinite(t *testing.T) {
	tris := cube(1, OneSided)
	tris[3].V[1].Y = math.NaN()
	_, err := Build(BackendCollider, tris)
	var berr *BackendError
	require.True(t, errors.As(err, &berr), "got %v", err)
	assert.Equal(t, CodeInvalidArgument, berr.Code)
	assert.Contains(t, berr.Error(), "model3d")
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendBIH, "BIH": BackendBIH, "model3d": BackendCollider} {
		got, err := ParseBackend(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBackend("embree")
	assert.Error(t, err)
}
