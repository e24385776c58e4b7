package pipeline

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blotch-banisher/internal/debug"
	"blotch-banisher/internal/inpaint"
	"blotch-banisher/internal/opencv/memory"
)

func newSessionCoordinator(t *testing.T) (*Coordinator, debug.Coordinator) {
	t.Helper()

	dbg := debug.NewCoordinator(debug.Config{
		EnableMemoryTracking: true,
		EnableFileTracking:   true,
		EnableTimingTracking: true,
		EventBufferSize:      64,
		TrailDir:             t.TempDir(),
	})
	mem := memory.NewManager(dbg.Logger(), dbg.MemoryTracker())
	coord := NewCoordinator(mem, dbg)

	t.Cleanup(func() {
		coord.Cleanup()
		mem.Cleanup()
		dbg.Shutdown()
	})

	return coord, dbg
}

func loadTestImage(t *testing.T, coord *Coordinator) *ImageData {
	t.Helper()
	imageData, err := coord.LoadFromPath(writeTestPNG(t, 60, 40))
	require.NoError(t, err)
	return imageData
}

func TestCoordinatorLoadFromPath(t *testing.T) {
	coord, _ := newSessionCoordinator(t)

	imageData := loadTestImage(t, coord)

	assert.Equal(t, 60, imageData.Width)
	assert.Equal(t, 40, imageData.Height)
	assert.NotEmpty(t, imageData.SourcePath)
	assert.Same(t, imageData, coord.CurrentImage())
	assert.Same(t, imageData, coord.OriginalImage())
	assert.Zero(t, coord.PatchCount())
}

func TestCoordinatorRequiresImageForPatching(t *testing.T) {
	coord, _ := newSessionCoordinator(t)

	_, err := coord.ApplyPatch(image.Pt(10, 10), 5, inpaint.MethodTelea)
	assert.ErrorIs(t, err, ErrNoImage)

	assert.ErrorIs(t, coord.SaveToPath(filepath.Join(t.TempDir(), "out.png")), ErrNoImage)

	_, err = coord.Undo()
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = coord.Reset()
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestCoordinatorApplyPatchAndUndo(t *testing.T) {
	coord, _ := newSessionCoordinator(t)
	original := loadTestImage(t, coord)

	result, err := coord.ApplyPatch(image.Pt(30, 20), 5, inpaint.MethodTelea)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(30, 20), result.Point)
	assert.Equal(t, 5, result.Radius)
	assert.Equal(t, inpaint.MethodTelea, result.Method)
	assert.False(t, result.Clamped)
	assert.Greater(t, result.Duration, time.Duration(0))
	assert.Equal(t, 60*40, result.Stats.TotalPixels)
	assert.Greater(t, result.Stats.ChangedPixels, 0, "the white square under the click must change")

	patched := coord.CurrentImage()
	assert.NotSame(t, original, patched)
	assert.Equal(t, 1, coord.PatchCount())

	restored, err := coord.Undo()
	require.NoError(t, err)
	assert.Same(t, original, restored)
	assert.Same(t, original, coord.CurrentImage())
	assert.Zero(t, coord.PatchCount())
	assert.False(t, patched.Mat.IsValid(), "the undone state must release its mat")

	_, err = coord.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestCoordinatorClampsOffImageClicks(t *testing.T) {
	coord, _ := newSessionCoordinator(t)
	loadTestImage(t, coord)

	result, err := coord.ApplyPatch(image.Pt(-15, 500), 5, inpaint.MethodTelea)
	require.NoError(t, err)

	assert.True(t, result.Clamped)
	assert.Equal(t, image.Pt(0, 39), result.Point)
}

func TestCoordinatorReset(t *testing.T) {
	coord, _ := newSessionCoordinator(t)
	original := loadTestImage(t, coord)

	for i := 0; i < 3; i++ {
		_, err := coord.ApplyPatch(image.Pt(30, 20), 4, inpaint.MethodTelea)
		require.NoError(t, err)
	}
	require.Equal(t, 3, coord.PatchCount())

	restored, err := coord.Reset()
	require.NoError(t, err)

	assert.Same(t, original, restored)
	assert.Zero(t, coord.PatchCount())
	assert.True(t, original.Mat.IsValid())

	_, err = coord.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo, "reset must clear the history")
}

func TestCoordinatorHistoryIsBounded(t *testing.T) {
	coord, _ := newSessionCoordinator(t)
	original := loadTestImage(t, coord)

	for i := 0; i < maxHistory+2; i++ {
		_, err := coord.ApplyPatch(image.Pt(30, 20), 3, inpaint.MethodTelea)
		require.NoError(t, err)
	}
	assert.Equal(t, maxHistory+2, coord.PatchCount())

	undos := 0
	for {
		_, err := coord.Undo()
		if err != nil {
			assert.ErrorIs(t, err, ErrNothingToUndo)
			break
		}
		undos++
		require.LessOrEqual(t, undos, maxHistory+2)
	}

	assert.Equal(t, maxHistory, undos)
	assert.NotSame(t, original, coord.CurrentImage(), "the original fell off the bounded stack")
	assert.True(t, original.Mat.IsValid(), "the original must survive eviction for Reset")

	restored, err := coord.Reset()
	require.NoError(t, err)
	assert.Same(t, original, restored)
}

func TestCoordinatorPatchEventReachesRecorder(t *testing.T) {
	coord, dbg := newSessionCoordinator(t)
	loadTestImage(t, coord)

	_, err := coord.ApplyPatch(image.Pt(12, 34), 6, inpaint.MethodNavierStokes)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return dbg.SessionRecorder().Count() == 1
	}, 2*time.Second, 10*time.Millisecond, "the patch event must reach the session recorder")
}

func TestCoordinatorLoadReplacesSession(t *testing.T) {
	coord, _ := newSessionCoordinator(t)
	first := loadTestImage(t, coord)

	_, err := coord.ApplyPatch(image.Pt(30, 20), 4, inpaint.MethodTelea)
	require.NoError(t, err)
	patched := coord.CurrentImage()

	second, err := coord.LoadFromPath(writeTestPNG(t, 20, 10))
	require.NoError(t, err)

	assert.Same(t, second, coord.CurrentImage())
	assert.Zero(t, coord.PatchCount())
	assert.False(t, first.Mat.IsValid(), "the previous session must release its mats")
	assert.False(t, patched.Mat.IsValid())

	_, err = coord.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestCoordinatorSaveToPath(t *testing.T) {
	coord, _ := newSessionCoordinator(t)
	loadTestImage(t, coord)

	_, err := coord.ApplyPatch(image.Pt(30, 20), 5, inpaint.MethodTelea)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "patched.png")
	require.NoError(t, coord.SaveToPath(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg, format := decodeConfig(t, data)
	assert.Equal(t, "png", format)
	assert.Equal(t, 60, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}
