package console

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/fatih/color"
)

// Console colors
var (
	cyan   = color.New(color.FgCyan, color.Bold)
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	blue   = color.New(color.FgBlue)
	white  = color.New(color.FgWhite)
)

// Reporter prints session progress for the person running the tool.
// The structured logs are the machine channel; this is the human one.
type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) Banner(version string) {
	cyan.Fprintln(r.out, "╔══════════════════════════════════════╗")
	cyan.Fprintln(r.out, "║            BLOTCH BANISHER           ║")
	cyan.Fprintln(r.out, "╚══════════════════════════════════════╝")
	yellow.Fprintf(r.out, "v%s\n", version)
	white.Fprintln(r.out, "Left-click a blotch to banish it. Escape quits.")
	fmt.Fprintln(r.out)
}

func (r *Reporter) ImageLoaded(path string, width, height int, format string) {
	green.Fprintf(r.out, "✓ Loaded %s (%dx%d %s)\n", path, width, height, format)
}

func (r *Reporter) LoadFailed(path string, err error) {
	red.Fprintf(r.out, "✗ Failed to load %s: %v\n", path, err)
}

func (r *Reporter) PatchApplied(n int, method string, pt image.Point, radius int, changedPixels int, took time.Duration) {
	green.Fprintf(r.out, "✓ Patch %d: %s at (%d,%d) r=%d banished %d px in %s\n",
		n, method, pt.X, pt.Y, radius, changedPixels, took.Round(time.Millisecond))
}

func (r *Reporter) PatchFailed(err error) {
	red.Fprintf(r.out, "✗ Patch failed: %v\n", err)
}

func (r *Reporter) Clamped(from, to image.Point) {
	yellow.Fprintf(r.out, "⚠ Click (%d,%d) was outside the image, patched at (%d,%d)\n",
		from.X, from.Y, to.X, to.Y)
}

func (r *Reporter) Undone(remaining int) {
	yellow.Fprintf(r.out, "Undid last patch (%d applied)\n", remaining)
}

func (r *Reporter) UndoFailed(err error) {
	yellow.Fprintf(r.out, "Nothing to undo: %v\n", err)
}

func (r *Reporter) ResetDone() {
	yellow.Fprintln(r.out, "Image reset to original")
}

func (r *Reporter) MethodSwitched(name string) {
	cyan.Fprintf(r.out, "Method switched to %s\n", name)
}

func (r *Reporter) RadiusChanged(radius int) {
	cyan.Fprintf(r.out, "Patch radius set to %d px\n", radius)
}

func (r *Reporter) Saved(path string) {
	green.Fprintf(r.out, "✓ Saved %s\n", path)
}

func (r *Reporter) SaveFailed(err error) {
	red.Fprintf(r.out, "✗ Save failed: %v\n", err)
}

func (r *Reporter) TrailWritten(path string) {
	green.Fprintf(r.out, "✓ Click trail written to %s\n", path)
}

func (r *Reporter) TrailFailed(err error) {
	red.Fprintf(r.out, "✗ Could not write click trail: %v\n", err)
}

// Summary prints the end-of-session report.
func (r *Reporter) Summary(patches int, avgPatch time.Duration, matsCreated, matsReused int64, fileLeaks int) {
	fmt.Fprintln(r.out)
	blue.Fprintln(r.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	white.Fprintf(r.out, "  Patches applied:  %d\n", patches)
	if avgPatch > 0 {
		white.Fprintf(r.out, "  Avg patch time:   %s\n", avgPatch.Round(time.Millisecond))
	}
	white.Fprintf(r.out, "  Mats created:     %d (%d reused)\n", matsCreated, matsReused)
	if fileLeaks > 0 {
		red.Fprintf(r.out, "  ⚠ Leaked file handles: %d\n", fileLeaks)
	}
	blue.Fprintln(r.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
