package console

import (
	"bytes"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Plain output so assertions see text, not escape codes.
	color.NoColor = true
}

func TestReporterBanner(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf).Banner("1.0.0")

	out := buf.String()
	assert.Contains(t, out, "BLOTCH BANISHER")
	assert.Contains(t, out, "v1.0.0")
	assert.Contains(t, out, "Escape quits")
}

func TestReporterSessionLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.ImageLoaded("photo.png", 800, 600, "png")
	r.PatchApplied(1, "telea", image.Pt(120, 45), 10, 317, 12*time.Millisecond)
	r.Clamped(image.Pt(-4, 10), image.Pt(0, 10))
	r.Undone(0)
	r.Saved("out.png")

	out := buf.String()
	assert.Contains(t, out, "✓ Loaded photo.png (800x600 png)")
	assert.Contains(t, out, "✓ Patch 1: telea at (120,45) r=10 banished 317 px in 12ms")
	assert.Contains(t, out, "⚠ Click (-4,10) was outside the image, patched at (0,10)")
	assert.Contains(t, out, "Undid last patch (0 applied)")
	assert.Contains(t, out, "✓ Saved out.png")
}

func TestReporterFailures(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.LoadFailed("bad.png", errors.New("not an image"))
	r.PatchFailed(errors.New("mask mismatch"))
	r.SaveFailed(errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "✗ Failed to load bad.png: not an image")
	assert.Contains(t, out, "✗ Patch failed: mask mismatch")
	assert.Contains(t, out, "✗ Save failed: disk full")
}

func TestReporterSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Summary(5, 9*time.Millisecond, 7, 4, 0)

	out := buf.String()
	assert.Contains(t, out, "Patches applied:  5")
	assert.Contains(t, out, "Avg patch time:   9ms")
	assert.Contains(t, out, "Mats created:     7 (4 reused)")
	assert.NotContains(t, out, "Leaked", "no leak line when nothing leaked")

	buf.Reset()
	r.Summary(0, 0, 1, 0, 2)
	assert.Contains(t, buf.String(), "Leaked file handles: 2")
	assert.NotContains(t, buf.String(), "Avg patch time")
}
