package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blotch-banisher/internal/inpaint"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blotch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "telea", cfg.Method)
	assert.Equal(t, inpaint.DefaultRadius, cfg.Radius)
	assert.Equal(t, ".", cfg.TrailDir)
	assert.False(t, cfg.Debug)

	assert.ErrorIs(t, cfg.Validate(), ErrMissingImage)

	cfg.ImagePath = "photo.png"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.ImagePath = "photo.png"

	cfg.Method = "blur"
	assert.ErrorIs(t, cfg.Validate(), inpaint.ErrUnknownMethod)

	cfg = Default()
	cfg.ImagePath = "photo.png"
	cfg.Radius = 0
	assert.Error(t, cfg.Validate())

	cfg.Radius = inpaint.MaxRadius + 1
	assert.Error(t, cfg.Validate())
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, "method: ns\nradius: 25\ntrail: true\n")

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "ns", cfg.Method)
	assert.Equal(t, 25, cfg.Radius)
	assert.True(t, cfg.Trail)
	assert.Equal(t, ".", cfg.TrailDir, "fields absent from the file keep their defaults")
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	broken := writeConfigFile(t, "method: [not\n")
	assert.Error(t, cfg.LoadFile(broken))
}

func TestParseFlagsPositionalImage(t *testing.T) {
	cfg, err := ParseFlags("blotch-banisher", []string{"photo.png"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "photo.png", cfg.ImagePath)
	assert.Equal(t, "telea", cfg.Method)
	assert.Equal(t, inpaint.DefaultRadius, cfg.Radius)
}

func TestParseFlagsBeatFileAndEnv(t *testing.T) {
	path := writeConfigFile(t, "method: ns\nradius: 25\n")
	t.Setenv("BLOTCH_TRAIL_DIR", "/tmp/env-trails")

	cfg, err := ParseFlags("blotch-banisher",
		[]string{"-config", path, "-radius", "3", "photo.png"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "ns", cfg.Method, "file value survives when no flag overrides it")
	assert.Equal(t, 3, cfg.Radius, "explicit flag beats the file")
	assert.Equal(t, "/tmp/env-trails", cfg.TrailDir, "environment beats the file")
}

func TestParseFlagsEnvToggles(t *testing.T) {
	t.Setenv("BLOTCH_DEBUG", "true")
	t.Setenv("BLOTCH_JSON_LOGS", "true")

	cfg, err := ParseFlags("blotch-banisher", []string{"photo.png"}, io.Discard)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.True(t, cfg.JSONLogs)
	assert.False(t, cfg.Production)
}

func TestParseFlagsImageFromFile(t *testing.T) {
	path := writeConfigFile(t, "image: from-file.png\n")

	cfg, err := ParseFlags("blotch-banisher", []string{"-config", path}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "from-file.png", cfg.ImagePath)
}

func TestParseFlagsRejectsBadInput(t *testing.T) {
	_, err := ParseFlags("blotch-banisher", []string{"-bogus"}, io.Discard)
	assert.Error(t, err)

	_, err = ParseFlags("blotch-banisher", []string{"a.png", "b.png"}, io.Discard)
	assert.Error(t, err)

	_, err = ParseFlags("blotch-banisher", nil, io.Discard)
	assert.ErrorIs(t, err, ErrMissingImage)

	_, err = ParseFlags("blotch-banisher", []string{"-method", "sharpen", "photo.png"}, io.Discard)
	assert.ErrorIs(t, err, inpaint.ErrUnknownMethod)
}
