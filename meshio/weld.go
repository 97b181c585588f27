package meshio

import (
	"errors"
	"math"

	"github.com/soypat/meshsdf"
	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Weld merges vertices of tris closer than tol and returns an indexed
// mesh. The first vertex seen within tol of another is kept.
// A tol of zero is inferred from the shortest triangle side.
func Weld(tris []Triangle, tol float64) (positions []r3.Vec, indices []uint32, err error) {
	if len(tris) == 0 {
		return nil, nil, errors.New("empty triangle slice")
	}
	if tol < 0 || math.IsNaN(tol) {
		return nil, nil, errors.New("negative vertex tolerance")
	}
	if tol == 0 {
		tol = suggestedTolerance(tris)
	}
	tol2 := tol * tol
	var tree kdtree.Tree
	indices = make([]uint32, 0, 3*len(tris))
	for i := range tris {
		for _, v := range tris[i].V {
			if !d3.IsFinite(v) {
				return nil, nil, errors.New("non-finite vertex")
			}
			q := &weldPoint{Vec: v}
			if tree.Root != nil {
				got, dist2 := tree.Nearest(q)
				if dist2 <= tol2 {
					indices = append(indices, uint32(got.(*weldPoint).idx))
					continue
				}
			}
			q.idx = len(positions)
			positions = append(positions, v)
			tree.Insert(q, false)
			indices = append(indices, uint32(q.idx))
		}
	}
	return positions, indices, nil
}

// suggestedTolerance is 1/256th of the shortest triangle side.
func suggestedTolerance(tris []Triangle) float64 {
	minDist2 := math.MaxFloat64
	for i := range tris {
		for j, vert := range tris[i].V {
			side2 := r3.Norm2(r3.Sub(tris[i].V[(j+1)%3], vert))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
		}
	}
	if minDist2 == math.MaxFloat64 {
		return 0
	}
	return math.Sqrt(minDist2) / 256
}

// ToMeshSource welds tris into a single section opaque mesh named name.
func ToMeshSource(name string, tris []Triangle, tol float64) (meshsdf.MeshSource, error) {
	positions, indices, err := Weld(tris, tol)
	if err != nil {
		return meshsdf.MeshSource{}, err
	}
	return meshsdf.MeshSource{
		Name:      name,
		Positions: positions,
		Indices:   indices,
		Sections:  []meshsdf.Section{{NumTriangles: len(tris)}},
		Materials: []meshsdf.Material{{Blend: meshsdf.Opaque}},
		Bounds:    meshsdf.BoundsFromPositions(positions),
	}, nil
}

// weldPoint is a kdtree.Comparable over vertex positions.
type weldPoint struct {
	r3.Vec
	idx int
}

var _ kdtree.Comparable = (*weldPoint)(nil)

// Compare returns the signed distance of p from the plane passing
// through c and perpendicular to the dimension d.
func (p *weldPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*weldPoint)
	return d3.Index(p.Vec, int(d)) - d3.Index(q.Vec, int(d))
}

// Dims returns the number of dimensions described by the receiver.
func (p *weldPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between p and c.
func (p *weldPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(*weldPoint)
	return r3.Norm2(r3.Sub(p.Vec, q.Vec))
}
