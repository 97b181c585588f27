package meshio

import (
	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box returns the 12 outward facing triangles of an axis aligned box.
func Box(center, half r3.Vec) []Triangle {
	half = d3.MaxElem(half, r3.Vec{})
	p := func(x, y, z float64) r3.Vec {
		return r3.Add(center, r3.Vec{X: x * half.X, Y: y * half.Y, Z: z * half.Z})
	}
	quads := [6][4]r3.Vec{
		{p(1, -1, -1), p(1, 1, -1), p(1, 1, 1), p(1, -1, 1)},     // +X
		{p(-1, -1, -1), p(-1, -1, 1), p(-1, 1, 1), p(-1, 1, -1)}, // -X
		{p(-1, 1, -1), p(-1, 1, 1), p(1, 1, 1), p(1, 1, -1)},     // +Y
		{p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1)}, // -Y
		{p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1)},     // +Z
		{p(-1, -1, -1), p(-1, 1, -1), p(1, 1, -1), p(1, -1, -1)}, // -Z
	}
	return quadsToTriangles(quads[:])
}

// Plane returns a square on the Z=0 plane facing +Z, split into
// div*div quads.
func Plane(half float64, div int) []Triangle {
	div = max(div, 1)
	step := 2 * half / float64(div)
	quads := make([][4]r3.Vec, 0, div*div)
	for i := 0; i < div; i++ {
		for j := 0; j < div; j++ {
			x0, y0 := -half+float64(i)*step, -half+float64(j)*step
			x1, y1 := x0+step, y0+step
			quads = append(quads, [4]r3.Vec{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}})
		}
	}
	return quadsToTriangles(quads)
}

func quadsToTriangles(quads [][4]r3.Vec) []Triangle {
	tris := make([]Triangle, 0, 2*len(quads))
	for _, q := range quads {
		tris = append(tris,
			Triangle{V: [3]r3.Vec{q[0], q[1], q[2]}},
			Triangle{V: [3]r3.Vec{q[0], q[2], q[3]}},
		)
	}
	return tris
}

// Flip reverses the winding of every triangle in place.
func Flip(tris []Triangle) {
	for i := range tris {
		tris[i].V[1], tris[i].V[2] = tris[i].V[2], tris[i].V[1]
	}
}
