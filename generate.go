// Package meshsdf bakes signed distance field volumes from triangle meshes.
//
// A volume is built by casting a fixed, stratified set of rays from the
// center of every voxel against an acceleration structure over the mesh
// triangles. A voxel is inside the mesh when most of the surfaces its rays
// hit are seen from behind. Distances are normalized to volume space and
// stored as 8 bit fixed point or half floats, optionally compressed.
//
// Meshes that are not closed leak negative distances to the border of the
// volume. Such volumes are discarded and reported with MeshWasClosed false.
package meshsdf

import (
	"errors"
	"fmt"
	"time"

	"github.com/soypat/meshsdf/accel"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Generator bakes distance field volumes with a fixed configuration.
// It is safe for concurrent use.
type Generator struct {
	cfg   Config
	log   *zap.Logger
	build func(accel.Backend, []accel.Triangle) (accel.Structure, error)
}

// NewGenerator returns a Generator using cfg. A nil logger discards all output.
func NewGenerator(cfg Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{cfg: cfg, log: log, build: accel.Build}
}

// Config returns the configuration used by g.
func (g *Generator) Config() Config { return g.cfg }

// Generate bakes the distance field of src. Voxel density is multiplied
// by resolutionScale; a non-positive scale skips the build and returns an
// empty volume. When buildAsIfTwoSided is set every triangle is treated
// as two sided.
//
// A mesh that is not closed yields a volume with a zero Size, no data and
// MeshWasClosed false. An error is returned only for an invalid
// configuration or a failure to build the acceleration structure, in
// which case errors.As with *accel.BackendError reports the failing call.
func (g *Generator) Generate(src MeshSource, resolutionScale float64, buildAsIfTwoSided bool) (*VolumeData, error) {
	if resolutionScale <= 0 {
		return &VolumeData{}, nil
	}
	cfg := g.cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("meshsdf: generating %q: %w", src.Name, err)
	}
	start := time.Now()
	log := g.log.With(zap.String("mesh", src.Name))

	mesh := prepareMesh(&src, buildAsIfTwoSided, cfg.Heuristics)
	if mesh.skipped > 0 {
		log.Debug("skipped degenerate triangles", zap.Int("skipped", mesh.skipped))
	}
	structure, err := g.build(cfg.Backend, mesh.tris)
	if err != nil {
		var berr *accel.BackendError
		if errors.As(err, &berr) {
			log.Warn("acceleration structure build failed",
				zap.String("call", berr.Call),
				zap.Int("code", berr.Code),
				zap.Error(berr.Err),
			)
		}
		return nil, fmt.Errorf("meshsdf: building %s structure for %q: %w", cfg.Backend, src.Name, err)
	}

	box := expandedBounds(mesh.bounds, &cfg)
	dims := volumeDims(box, &cfg, resolutionScale)
	vol := &VolumeData{
		LocalBoundingBox:  r3.Box(box),
		BuiltAsIfTwoSided: buildAsIfTwoSided,
		MeshWasPlane:      mesh.plane,
	}
	if cfg.EightBit {
		vol.Format = FormatEightBit
	}

	grid := make([]float32, dims.Prod())
	negativeAtBorder, err := newSampler(structure, box, dims, &cfg).run(grid, cfg.workers())
	if err != nil {
		return nil, fmt.Errorf("meshsdf: sampling %q: %w", src.Name, err)
	}
	if negativeAtBorder {
		log.Info("mesh distance field discarded: negative distances at the volume border, the mesh is not closed; consider a two sided material",
			zap.Int("triangles", len(mesh.tris)),
		)
		return vol, nil
	}

	lo, hi := distanceRange(grid)
	data := quantize(grid, vol.Format, lo, hi)
	if cfg.Compress {
		data, err = compress(data)
		if err != nil {
			return nil, err
		}
		vol.Compressed = true
	}
	vol.Size = dims
	vol.DistanceMinMax = r2.Vec{X: float64(lo), Y: float64(hi)}
	vol.MeshWasClosed = true
	vol.Data = data
	log.Debug("built mesh distance field",
		zap.Ints("size", dims[:]),
		zap.Int("triangles", len(mesh.tris)),
		zap.String("backend", string(cfg.Backend)),
		zap.Stringer("format", vol.Format),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return vol, nil
}
