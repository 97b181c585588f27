// Package meshio reads, writes and converts triangle meshes for
// distance field baking.
package meshio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a triangle of a mesh soup. Vertices are ordered
// counter-clockwise when seen from the front.
type Triangle struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle.
func (t Triangle) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Load reads the mesh at path. Binary STL files are read and validated
// by ReadSTL, OBJ, PLY, 3DS and ASCII STL files are read by fauxgl.
func Load(path string) ([]Triangle, error) {
	if strings.EqualFold(filepath.Ext(path), ".stl") {
		tris, err := LoadSTL(path)
		if err == nil || len(tris) > 0 {
			return tris, err
		}
	}
	mesh, err := fauxgl.LoadMesh(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return FromFauxgl(mesh), nil
}

// FromFauxgl converts a fauxgl mesh to a triangle soup.
func FromFauxgl(mesh *fauxgl.Mesh) []Triangle {
	tris := make([]Triangle, len(mesh.Triangles))
	for i, t := range mesh.Triangles {
		tris[i] = Triangle{V: [3]r3.Vec{
			fromVector(t.V1.Position),
			fromVector(t.V2.Position),
			fromVector(t.V3.Position),
		}}
	}
	return tris
}

// ToFauxgl converts a triangle soup to a fauxgl mesh.
func ToFauxgl(tris []Triangle) *fauxgl.Mesh {
	ft := make([]*fauxgl.Triangle, len(tris))
	for i, t := range tris {
		ft[i] = fauxgl.NewTriangleForPoints(toVector(t.V[0]), toVector(t.V[1]), toVector(t.V[2]))
	}
	return fauxgl.NewTriangleMesh(ft)
}

func fromVector(v fauxgl.Vector) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func toVector(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
