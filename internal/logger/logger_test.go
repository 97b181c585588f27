package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bake.log")
	cfg := DefaultFileConfig(path)
	cfg.Compress = false
	require.NoError(t, InitWithFileConfig("debug", cfg, false))
	t.Cleanup(func() { Log = zap.NewNop() })

	Log.Debug("volume built", zap.String("mesh", "cube"), zap.Int("triangles", 12))
	Log.Info("second entry")
	Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "volume built", entry["msg"])
	assert.Equal(t, "cube", entry["mesh"])
	assert.EqualValues(t, 12, entry["triangles"])
}

func TestInitLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bake.log")
	require.NoError(t, InitWithFileConfig("warn", FileConfig{Path: path}, false))
	t.Cleanup(func() { Log = zap.NewNop() })

	Log.Info("dropped")
	Log.Warn("kept")
	Sync()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "dropped")
	assert.Contains(t, string(b), "kept")

	assert.Error(t, InitWithFileConfig("loud", FileConfig{}, false))
}
