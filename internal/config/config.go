// Package config holds the sdfbake command configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/soypat/meshsdf"
)

// Config is the complete sdfbake configuration.
type Config struct {
	Build   meshsdf.Config `yaml:"build"`
	Bake    BakeConfig     `yaml:"bake"`
	Logging LoggingConfig  `yaml:"logging"`
}

// BakeConfig selects the meshes to bake and where results go.
type BakeConfig struct {
	Inputs []string `yaml:"inputs"`
	// Scale multiplies the voxel density of every mesh.
	Scale    float64 `yaml:"scale"`
	TwoSided bool    `yaml:"two_sided"`
	// WeldTolerance is the distance under which vertices are merged.
	// Zero infers it from the mesh.
	WeldTolerance float64 `yaml:"weld_tolerance"`
	// Jobs limits concurrent mesh builds. Zero places no limit.
	Jobs int `yaml:"jobs"`
	// OutDir receives one .sdf file per mesh.
	OutDir string `yaml:"out_dir"`
	// Slice is the Z slice written as PNG previews. Negative disables previews.
	Slice        int  `yaml:"slice"`
	PreviewWidth uint `yaml:"preview_width"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Build: meshsdf.DefaultConfig(),
		Bake: BakeConfig{
			Scale:        1,
			OutDir:       ".",
			Slice:        -1,
			PreviewWidth: 512,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks c before any mesh is loaded.
func (c *Config) Validate() error {
	if err := c.Build.Validate(); err != nil {
		return err
	}
	switch {
	case len(c.Bake.Inputs) == 0:
		return errors.New("no input meshes")
	case !(c.Bake.Scale > 0):
		return fmt.Errorf("scale must be positive, got %g", c.Bake.Scale)
	case c.Bake.WeldTolerance < 0:
		return fmt.Errorf("negative weld tolerance %g", c.Bake.WeldTolerance)
	case c.Bake.Jobs < 0:
		return fmt.Errorf("negative jobs %d", c.Bake.Jobs)
	}
	return nil
}
