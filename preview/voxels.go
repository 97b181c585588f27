package preview

import (
	"github.com/fogleman/fauxgl"
	"github.com/soypat/meshsdf"
)

// cubeFaces lists the corners of each voxel face counter-clockwise seen
// from outside. Corner bit 0 selects max X, bit 1 max Y and bit 2 max Z.
var cubeFaces = [6]struct {
	step    [3]int
	corners [4]int
}{
	{step: [3]int{1, 0, 0}, corners: [4]int{1, 3, 7, 5}},
	{step: [3]int{-1, 0, 0}, corners: [4]int{0, 4, 6, 2}},
	{step: [3]int{0, 1, 0}, corners: [4]int{2, 6, 7, 3}},
	{step: [3]int{0, -1, 0}, corners: [4]int{0, 1, 5, 4}},
	{step: [3]int{0, 0, 1}, corners: [4]int{4, 5, 7, 6}},
	{step: [3]int{0, 0, -1}, corners: [4]int{0, 2, 3, 1}},
}

// InteriorMesh returns the boundary of the voxels of vol with negative
// distance as a closed mesh of axis aligned quads in local coordinates.
func InteriorMesh(vol *meshsdf.VolumeData) (*fauxgl.Mesh, error) {
	dist, err := vol.Distances()
	if err != nil {
		return nil, err
	}
	n := vol.Size
	inside := func(x, y, z int) bool {
		if x < 0 || y < 0 || z < 0 || x >= n[0] || y >= n[1] || z >= n[2] {
			return false
		}
		return dist[(z*n[1]+y)*n[0]+x] < 0
	}
	bb := vol.LocalBoundingBox
	step := fauxgl.V(
		(bb.Max.X-bb.Min.X)/float64(n[0]),
		(bb.Max.Y-bb.Min.Y)/float64(n[1]),
		(bb.Max.Z-bb.Min.Z)/float64(n[2]),
	)
	origin := fauxgl.V(bb.Min.X, bb.Min.Y, bb.Min.Z)
	var tris []*fauxgl.Triangle
	for z := 0; z < n[2]; z++ {
		for y := 0; y < n[1]; y++ {
			for x := 0; x < n[0]; x++ {
				if !inside(x, y, z) {
					continue
				}
				var corner [8]fauxgl.Vector
				for c := range corner {
					off := fauxgl.V(float64(x+c&1), float64(y+c>>1&1), float64(z+c>>2&1))
					corner[c] = origin.Add(off.Mul(step))
				}
				for _, f := range cubeFaces {
					if inside(x+f.step[0], y+f.step[1], z+f.step[2]) {
						continue
					}
					q := f.corners
					tris = append(tris,
						fauxgl.NewTriangleForPoints(corner[q[0]], corner[q[1]], corner[q[2]]),
						fauxgl.NewTriangleForPoints(corner[q[0]], corner[q[2]], corner[q[3]]),
					)
				}
			}
		}
	}
	return fauxgl.NewTriangleMesh(tris), nil
}
