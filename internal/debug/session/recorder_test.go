package session

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayBase(w, h int) *image.RGBA {
	base := image.NewRGBA(image.Rect(0, 0, w, h))
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base.SetRGBA(x, y, gray)
		}
	}
	return base
}

func TestRecorderKeepsClickOrder(t *testing.T) {
	rec := NewRecorder(t.TempDir())

	rec.Record(10, 20, 10, "telea")
	rec.Record(30, 40, 12, "ns")
	rec.Record(50, 60, 10, "telea")

	clicks := rec.Clicks()
	require.Len(t, clicks, 3)
	assert.Equal(t, 10, clicks[0].X)
	assert.Equal(t, "ns", clicks[1].Method)
	assert.Equal(t, 60, clicks[2].Y)
	assert.Equal(t, 3, rec.Count())
}

func TestRenderMarksClickPoints(t *testing.T) {
	rec := NewRecorder(t.TempDir())
	rec.Record(50, 50, 10, "telea")

	base := grayBase(100, 100)
	rendered := rec.Render(base)

	require.Equal(t, base.Bounds(), rendered.Bounds())

	// The center dot must change the pixel under the click.
	r0, g0, b0, _ := base.At(50, 50).RGBA()
	r1, g1, b1, _ := rendered.At(50, 50).RGBA()
	assert.NotEqual(t, [3]uint32{r0, g0, b0}, [3]uint32{r1, g1, b1})

	// Far corners stay untouched.
	assert.Equal(t, base.At(99, 99), rendered.At(99, 99))
}

func TestWriteTrailCreatesPNG(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir)
	rec.Record(20, 30, 10, "telea")
	rec.Record(70, 80, 10, "ns")

	path, err := rec.WriteTrail(grayBase(100, 100))
	require.NoError(t, err)
	require.NotEmpty(t, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 100, decoded.Bounds().Dy())
}

func TestWriteTrailWithoutClicks(t *testing.T) {
	rec := NewRecorder(t.TempDir())

	path, err := rec.WriteTrail(grayBase(10, 10))
	require.NoError(t, err)
	assert.Empty(t, path, "an empty session leaves no trail file")
}
