package meshsdf

import (
	"math"

	"github.com/soypat/meshsdf/accel"
	"github.com/soypat/meshsdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// preparedMesh is the triangle set handed to the acceleration structure.
type preparedMesh struct {
	tris []accel.Triangle
	// bounds are the local mesh bounds before plane flattening.
	bounds d3.Box
	plane  bool
	// skipped counts degenerate triangles and triangles with bad indices.
	skipped int
}

// isPlane reports whether bb is thin along Z and straddles the Z=0 plane.
func isPlane(bb d3.Box, h Heuristics) bool {
	size := bb.Size()
	maxDim := d3.Max(size)
	if !(maxDim > 0) {
		return false
	}
	return size.Z < h.PlaneThicknessRatio*maxDim &&
		bb.Min.Z <= h.PlaneEpsilon && bb.Max.Z >= -h.PlaneEpsilon
}

// prepareMesh gathers the triangles of src that contribute to the
// distance field. Sections with non-occluding materials are dropped,
// degenerate triangles are discarded and plane meshes are flattened onto Z=0.
func prepareMesh(src *MeshSource, buildAsIfTwoSided bool, h Heuristics) preparedMesh {
	p := preparedMesh{
		bounds: d3.Box(src.LocalBounds().Box()),
	}
	p.plane = isPlane(p.bounds, h)
	ntris := src.NumTriangles()
	p.tris = make([]accel.Triangle, 0, ntris)
	for _, section := range src.sections() {
		mat := src.material(section.MaterialIndex)
		if !mat.Blend.ContributesGeometry() {
			continue
		}
		var tag uint8
		if buildAsIfTwoSided || mat.TwoSided {
			tag = accel.TwoSided
		}
		first := max(section.FirstTriangle, 0)
		last := min(section.FirstTriangle+section.NumTriangles, ntris)
		for i := first; i < last; i++ {
			v, ok := src.triangle(i)
			if !ok {
				p.skipped++
				continue
			}
			if p.plane {
				v[0].Z, v[1].Z, v[2].Z = 0, 0, 0
			}
			tri := accel.Triangle{V: v, Tag: tag}
			if !isUnit(tri.Normal()) {
				p.skipped++
				continue
			}
			p.tris = append(p.tris, tri)
		}
	}
	return p
}

// isUnit reports whether n has unit length. Normalizing the normal of a
// zero area or non-finite triangle does not produce a unit vector.
func isUnit(n r3.Vec) bool {
	return math.Abs(r3.Norm2(n)-1) < 1e-6
}
