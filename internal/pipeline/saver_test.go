package pipeline

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSaver() (*imageSaver, *testFileTracker) {
	tracker := &testFileTracker{}
	return &imageSaver{
		fileTracker:   tracker,
		logger:        testLogger{},
		timingTracker: testTiming{},
	}, tracker
}

func decodeConfig(t *testing.T, data []byte) (image.Config, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg, format
}

func TestSaverWritesPNG(t *testing.T) {
	saver, _ := newTestSaver()
	imageData := &ImageData{Image: newTestImage(30, 20), Width: 30, Height: 20, Format: "png"}

	var buf bytes.Buffer
	require.NoError(t, saver.SaveToWriter(&buf, imageData, "png"))

	cfg, format := decodeConfig(t, buf.Bytes())
	assert.Equal(t, "png", format)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestSaverWritesJPEG(t *testing.T) {
	saver, _ := newTestSaver()
	imageData := &ImageData{Image: newTestImage(30, 20), Width: 30, Height: 20, Format: "png"}

	var buf bytes.Buffer
	require.NoError(t, saver.SaveToWriter(&buf, imageData, "jpeg"))

	_, format := decodeConfig(t, buf.Bytes())
	assert.Equal(t, "jpeg", format)
}

func TestSaverFallsBackToSourceFormat(t *testing.T) {
	saver, _ := newTestSaver()
	imageData := &ImageData{Image: newTestImage(10, 10), Width: 10, Height: 10, Format: "jpeg"}

	var buf bytes.Buffer
	require.NoError(t, saver.SaveToWriter(&buf, imageData, ""))

	_, format := decodeConfig(t, buf.Bytes())
	assert.Equal(t, "jpeg", format)
}

func TestSaverFallsBackToPNGForUnwritableFormats(t *testing.T) {
	saver, _ := newTestSaver()
	imageData := &ImageData{Image: newTestImage(10, 10), Width: 10, Height: 10, Format: "tiff"}

	var buf bytes.Buffer
	require.NoError(t, saver.SaveToWriter(&buf, imageData, "tiff"))

	_, format := decodeConfig(t, buf.Bytes())
	assert.Equal(t, "png", format)
}

func TestSaverRejectsMissingImage(t *testing.T) {
	saver, _ := newTestSaver()

	var buf bytes.Buffer
	assert.ErrorIs(t, saver.SaveToWriter(&buf, nil, "png"), ErrNoImage)
	assert.ErrorIs(t, saver.SaveToWriter(&buf, &ImageData{}, "png"), ErrNoImage)
}

func TestSaverSaveToPath(t *testing.T) {
	saver, tracker := newTestSaver()
	imageData := &ImageData{Image: newTestImage(16, 16), Width: 16, Height: 16, Format: "png"}

	path := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, saver.SaveToPath(path, imageData))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	_, format := decodeConfig(t, data)
	assert.Equal(t, "jpeg", format, "extension must pick the encoder")
	assert.Equal(t, 1, tracker.opens)
	assert.Equal(t, 1, tracker.closes)
}
