package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brushlink/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, domain.ModeTransient, cfg.Mode())
	assert.Equal(t, []string{"unhover", "relayout"}, cfg.Selection.ClearOn)
	assert.Equal(t, 256, cfg.Selection.QueueSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	svc := NewServiceWithPath(filepath.Join(t.TempDir(), "nope.toml"))

	cfg, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	svc := NewServiceWithPath(path)

	cfg := DefaultConfig()
	cfg.Selection.DefaultMode = "dynamic"
	cfg.Selection.SlowRenderWarnMs = 500
	cfg.Palette.Colors = []string{"#111111", "#222222"}
	cfg.Bridge.Listen = ":8777"

	require.NoError(t, svc.Save(cfg))

	loaded, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDynamic, loaded.Mode())
	assert.Equal(t, 500, loaded.Selection.SlowRenderWarnMs)
	assert.Equal(t, []string{"#111111", "#222222"}, loaded.Palette.Colors)
	assert.Equal(t, ":8777", loaded.Bridge.Listen)
}

func TestLoadPartialFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[selection]\ndefault_mode = \"persistent\"\n"), 0644))

	cfg, err := NewServiceWithPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ModePersistent, cfg.Mode())
	assert.Equal(t, 256, cfg.Selection.QueueSize, "missing fields keep defaults")
}

func TestLoadRejectsBadMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[selection]\ndefault_mode = \"sticky\"\n"), 0644))

	_, err := NewServiceWithPath(path).Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadClearTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[selection]\nclear_on = [\"sneeze\"]\n"), 0644))

	_, err := NewServiceWithPath(path).Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("selection = [broken"), 0644))

	_, err := NewServiceWithPath(path).Load()
	assert.Error(t, err)
}

func TestBusConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Selection.SlowRenderWarnMs = 200
	cfg.Selection.ClearOn = []string{"relayout"}
	cfg.Palette.Colors = []string{"#111111"}

	bc := cfg.BusConfig()
	assert.Equal(t, 200*time.Millisecond, bc.SlowRenderWarn)
	assert.Equal(t, []domain.EventKind{domain.KindRelayout}, bc.ClearOn)
	assert.Equal(t, []string{"#111111"}, bc.PaletteColors)
	assert.Equal(t, 256, bc.QueueSize)
}
