package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PROVFIG_DATA", "PROVFIG_FIGURE_DIR", "PROVFIG_DPI", "PROVFIG_LOG_LEVEL", "PROVFIG_LOG_FORMAT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "Shapefile/Simplified provinces - 10 km.gpkg", cfg.Data)
	assert.Equal(t, "Figures", cfg.FigureDir)
	assert.Equal(t, 300.0, cfg.DPI)
	assert.False(t, cfg.DPISet)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("PROVFIG_DPI", "")
	os.Unsetenv("PROVFIG_DPI")
	t.Setenv("PROVFIG_FIGURE_DIR", "out")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PROVFIG_DPI=450\nPROVFIG_FIGURE_DIR=ignored\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PROVFIG_DPI") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 450.0, cfg.DPI)
	assert.True(t, cfg.DPISet)
	assert.Equal(t, "out", cfg.FigureDir, "environment wins over .env")
}

func TestLoadMalformedDotEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unterminated quote", "PROVFIG_DPI=\"450\n"},
		{"bad key", "PROVFIG-DPI=450\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.env")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bad.env")
		})
	}
}

func TestLoadUnreadableDotEnv(t *testing.T) {
	// A directory exists but cannot be parsed as a file.
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadRejectsBadDPI(t *testing.T) {
	t.Setenv("PROVFIG_DPI", "-1")
	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	assert.Error(t, err)

	t.Setenv("PROVFIG_DPI", "lots")
	_, err = Load(filepath.Join(t.TempDir(), "none.env"))
	assert.Error(t, err)
}
