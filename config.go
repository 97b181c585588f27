package meshsdf

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/soypat/meshsdf/accel"
)

// Heuristics are the tuning constants of inside/outside classification
// and geometry preparation.
type Heuristics struct {
	// BackfaceRatio is the fraction of hits that must be backfaces for a
	// voxel to be classified inside.
	BackfaceRatio float64 `yaml:"backface_ratio"`
	// NearSurfaceBackfaceRatio is the backface fraction that must be
	// exceeded for voxels closer to the surface than one voxel diagonal.
	NearSurfaceBackfaceRatio float64 `yaml:"near_surface_backface_ratio"`
	// PlaneThicknessRatio is the largest Z size, relative to the largest
	// dimension, of a mesh detected as a plane.
	PlaneThicknessRatio float64 `yaml:"plane_thickness_ratio"`
	// PlaneEpsilon is the tolerance used when checking that a plane's
	// bounds straddle Z=0.
	PlaneEpsilon float64 `yaml:"plane_epsilon"`
	// MinBoundsPadding is the smallest padding added to each half extent
	// of the mesh bounds.
	MinBoundsPadding float64 `yaml:"min_bounds_padding"`
}

// Config holds every setting read by a build. A Generator copies it once
// per build.
type Config struct {
	MinVoxelsOneDim int     `yaml:"min_voxels_one_dim"`
	MaxVoxelsOneDim int     `yaml:"max_voxels_one_dim"`
	VoxelDensity    float64 `yaml:"voxel_density"`
	// EightBit selects 8 bit fixed point storage. Half floats are stored otherwise.
	EightBit bool `yaml:"eight_bit"`
	// Compress zlib-compresses the quantized volume.
	Compress bool          `yaml:"compress"`
	Backend  accel.Backend `yaml:"backend"`
	// NumSamples is the target number of ray directions cast per voxel.
	NumSamples int   `yaml:"num_samples"`
	Seed       int64 `yaml:"seed"`
	// Workers limits the number of Z slices sampled concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	Workers    int        `yaml:"workers"`
	Heuristics Heuristics `yaml:"heuristics"`
}

// DefaultHeuristics returns the default classification constants.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		BackfaceRatio:            0.5,
		NearSurfaceBackfaceRatio: 0.95,
		PlaneThicknessRatio:      0.01,
		PlaneEpsilon:             1e-4,
		MinBoundsPadding:         1e-4,
	}
}

// DefaultConfig returns the default build configuration.
func DefaultConfig() Config {
	return Config{
		MinVoxelsOneDim: 8,
		MaxVoxelsOneDim: 128,
		VoxelDensity:    0.1,
		Backend:         accel.BackendBIH,
		NumSamples:      1200,
		Heuristics:      DefaultHeuristics(),
	}
}

var errConfig = errors.New("invalid config")

// Validate checks the configuration for values no build can use.
func (c Config) Validate() error {
	switch {
	case c.MinVoxelsOneDim <= 0:
		return fmt.Errorf("%w: MinVoxelsOneDim must be positive, got %d", errConfig, c.MinVoxelsOneDim)
	case c.MaxVoxelsOneDim < c.MinVoxelsOneDim:
		return fmt.Errorf("%w: MaxVoxelsOneDim %d below MinVoxelsOneDim %d", errConfig, c.MaxVoxelsOneDim, c.MinVoxelsOneDim)
	case !(c.VoxelDensity > 0):
		return fmt.Errorf("%w: VoxelDensity must be positive, got %g", errConfig, c.VoxelDensity)
	case c.Workers < 0:
		return fmt.Errorf("%w: negative Workers", errConfig)
	}
	if nTheta, _ := sampleSteps(c.NumSamples); nTheta < 1 {
		return fmt.Errorf("%w: NumSamples %d yields no sample directions", errConfig, c.NumSamples)
	}
	if _, err := accel.ParseBackend(string(c.Backend)); err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	h := c.Heuristics
	switch {
	case !(h.BackfaceRatio > 0 && h.BackfaceRatio <= 1):
		return fmt.Errorf("%w: BackfaceRatio must be in (0,1], got %g", errConfig, h.BackfaceRatio)
	case !(h.NearSurfaceBackfaceRatio >= 0 && h.NearSurfaceBackfaceRatio <= 1):
		return fmt.Errorf("%w: NearSurfaceBackfaceRatio must be in [0,1], got %g", errConfig, h.NearSurfaceBackfaceRatio)
	case h.PlaneThicknessRatio < 0 || h.PlaneEpsilon < 0:
		return fmt.Errorf("%w: negative plane detection tolerance", errConfig)
	case !(h.MinBoundsPadding > 0):
		return fmt.Errorf("%w: MinBoundsPadding must be positive, got %g", errConfig, h.MinBoundsPadding)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
