package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/soypat/meshsdf/accel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, accel.BackendBIH, cfg.Build.Backend)
	assert.Equal(t, 1200, cfg.Build.NumSamples)
	assert.Equal(t, 1.0, cfg.Bake.Scale)
	assert.Equal(t, -1, cfg.Bake.Slice)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Error(t, cfg.Validate(), "no inputs")
	cfg.Bake.Inputs = []string{"a.stl"}
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bake.yaml")
	const content = `
build:
  backend: model3d
  num_samples: 300
  eight_bit: true
  heuristics:
    backface_ratio: 0.6
bake:
  inputs: [chair.obj, table.stl]
  scale: 2
  out_dir: /tmp/volumes
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load([]string{"-config", path}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, accel.BackendCollider, cfg.Build.Backend)
	assert.Equal(t, 300, cfg.Build.NumSamples)
	assert.True(t, cfg.Build.EightBit)
	assert.Equal(t, 0.6, cfg.Build.Heuristics.BackfaceRatio)
	// unset fields keep their defaults.
	assert.Equal(t, 0.95, cfg.Build.Heuristics.NearSurfaceBackfaceRatio)
	assert.Equal(t, 128, cfg.Build.MaxVoxelsOneDim)
	assert.Equal(t, []string{"chair.obj", "table.stl"}, cfg.Bake.Inputs)
	assert.Equal(t, 2.0, cfg.Bake.Scale)
	assert.Equal(t, "warn", cfg.Logging.Level)

	cfg, err = Load([]string{"-config", path, "-debug", "-backend", "bih", "-eight-bit=false", "-scale", "0.5", "-slice", "3", "lamp.stl"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, accel.BackendBIH, cfg.Build.Backend)
	assert.False(t, cfg.Build.EightBit)
	assert.Equal(t, 0.5, cfg.Bake.Scale)
	assert.Equal(t, 3, cfg.Bake.Slice)
	assert.Equal(t, []string{"lamp.stl"}, cfg.Bake.Inputs)
	assert.Equal(t, "/tmp/volumes", cfg.Bake.OutDir)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := Load([]string{"-backend", "embree", "a.stl"}, io.Discard)
	assert.Error(t, err)
	_, err = Load([]string{"-scale", "-1", "a.stl"}, io.Discard)
	assert.Error(t, err)
	_, err = Load([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "a.stl"}, io.Discard)
	assert.Error(t, err)
	_, err = Load([]string{"-no-such-flag"}, io.Discard)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("build: [1, 2"), 0o644))
	_, err = Load([]string{"-config", bad, "a.stl"}, io.Discard)
	assert.Error(t, err)
}

func TestLoadUserConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("user config dir follows XDG_CONFIG_HOME on linux only")
	}
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	cfg := Default()
	cfg.Bake.Inputs = []string{"saved.stl"}
	cfg.Build.Workers = 3
	require.NoError(t, cfg.SaveTo(filepath.Join(ConfigDir(), "config.yaml")))

	got, err := Load(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
