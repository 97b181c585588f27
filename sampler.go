package meshsdf

import (
	"math"

	"github.com/soypat/meshsdf/accel"
	"github.com/soypat/meshsdf/internal/d3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// sampler computes the signed distance of every voxel of a volume by
// casting rays in a fixed set of directions against a Structure.
type sampler struct {
	structure accel.Structure
	// cull is the structure's bounding box. Rays missing it are not queried.
	cull       d3.Box
	dirs       []r3.Vec
	box        d3.Box
	dims       V3i
	voxelSize  r3.Vec
	voxelDiag2 float64
	// maxDistance is the ray length and the distance assigned to voxels
	// whose rays hit nothing.
	maxDistance float64
	// toVolume converts local distances to volume space.
	toVolume float64
	h        Heuristics
}

func newSampler(structure accel.Structure, box d3.Box, dims V3i, cfg *Config) *sampler {
	voxelSize := d3.DivElem(box.Size(), dims.ToV3())
	extent := box.Extent()
	return &sampler{
		structure:   structure,
		cull:        d3.Box(structure.Bounds()),
		dirs:        sampleDirections(cfg.NumSamples, cfg.Seed),
		box:         box,
		dims:        dims,
		voxelSize:   voxelSize,
		voxelDiag2:  r3.Norm2(voxelSize),
		maxDistance: r3.Norm(extent),
		toVolume:    1 / d3.Max(extent),
		h:           cfg.Heuristics,
	}
}

// run samples every Z slice of grid, at most workers at a time, and
// reports whether any border voxel was found inside the mesh.
func (s *sampler) run(grid []float32, workers int) (negativeAtBorder bool, err error) {
	sliceLen := s.dims[0] * s.dims[1]
	negative := make([]bool, s.dims[2])
	var g errgroup.Group
	g.SetLimit(workers)
	for z := 0; z < s.dims[2]; z++ {
		z := z
		slice := grid[z*sliceLen : (z+1)*sliceLen]
		g.Go(func() error {
			negative[z] = s.sampleSlice(z, slice)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for _, neg := range negative {
		negativeAtBorder = negativeAtBorder || neg
	}
	return negativeAtBorder, nil
}

// sampleSlice fills dst with the volume space distances of slice z.
func (s *sampler) sampleSlice(z int, dst []float32) (negativeAtBorder bool) {
	for y := 0; y < s.dims[1]; y++ {
		for x := 0; x < s.dims[0]; x++ {
			center := r3.Add(s.box.Min, d3.MulElem(r3.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5, Z: float64(z) + 0.5}, s.voxelSize))
			d := math.Max(-1, math.Min(1, s.signedDistance(center)*s.toVolume))
			dst[y*s.dims[0]+x] = float32(d)
			if d < 0 && s.dims.onBorder(x, y, z) {
				negativeAtBorder = true
			}
		}
	}
	return negativeAtBorder
}

// signedDistance returns the local space signed distance at p, negative
// when p is classified inside the mesh.
func (s *sampler) signedDistance(p r3.Vec) float64 {
	minDist := s.maxDistance
	var hits, backHits int
	for _, dir := range s.dirs {
		seg := r3.Scale(s.maxDistance, dir)
		if _, _, ok := s.cull.IntersectRay(p, seg, 0, 1); !ok {
			continue
		}
		hit, ok := s.structure.Intersect(p, seg, 0, 1)
		if !ok {
			continue
		}
		hits++
		if r3.Dot(dir, hit.Normal) > 0 && hit.Tag == accel.OneSided {
			backHits++
		}
		minDist = min(minDist, hit.T*s.maxDistance)
	}
	if hits > 0 && s.inside(hits, backHits, minDist) {
		return -minDist
	}
	return minDist
}

func (s *sampler) inside(hits, backHits int, minDist float64) bool {
	h, b := float64(hits), float64(backHits)
	return b >= s.h.BackfaceRatio*h ||
		(minDist*minDist < s.voxelDiag2 && b > s.h.NearSurfaceBackfaceRatio*h)
}
