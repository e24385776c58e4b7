package pipeline

import (
	"fmt"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"blotch-banisher/internal/debug"
	"blotch-banisher/internal/inpaint"
	"blotch-banisher/internal/opencv/conversion"
	"blotch-banisher/internal/opencv/memory"
)

// maxHistory bounds the undo stack. Each entry pins a full-size Mat,
// so deep histories on large images get expensive fast. Once the
// original falls off the stack it stays reachable through Reset.
const maxHistory = 10

// Coordinator owns the editing session: the original image, the
// current state, and the undo history between them. All methods are
// safe for concurrent use; one mutex serializes the session.
type Coordinator struct {
	mu       sync.RWMutex
	original *ImageData
	current  *ImageData
	history  []*ImageData
	patches  int

	inpainter *inpaint.Inpainter
	loader    ImageLoader
	saver     ImageSaver
	events    debug.EventPublisher
	logger    Logger
	timing    TimingTracker
}

func NewCoordinator(memoryManager *memory.Manager, dbg debug.Coordinator) *Coordinator {
	log := dbg.Logger()
	timing := dbg.TimingTracker()

	return &Coordinator{
		inpainter: inpaint.NewInpainter(memoryManager, dbg.MemoryTracker(), log, timing),
		loader: &imageLoader{
			memTracker:    dbg.MemoryTracker(),
			fileTracker:   dbg.FileTracker(),
			logger:        log,
			timingTracker: timing,
		},
		saver: &imageSaver{
			fileTracker:   dbg.FileTracker(),
			logger:        log,
			timingTracker: timing,
		},
		events: dbg.EventPublisher(),
		logger: log,
		timing: timing,
	}
}

func (c *Coordinator) LoadFromPath(path string) (*ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	imageData, err := c.loader.LoadFromPath(path)
	if err != nil {
		return nil, err
	}

	c.installLocked(imageData)
	return imageData, nil
}

func (c *Coordinator) LoadFromReader(reader fyne.URIReadCloser) (*ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	imageData, err := c.loader.LoadFromReader(reader)
	if err != nil {
		return nil, err
	}

	c.installLocked(imageData)
	return imageData, nil
}

// ApplyPatch inpaints a circle around the clicked point and makes the
// result the current state. The session is untouched when any step
// fails, so a bad click never costs the user their work.
func (c *Coordinator) ApplyPatch(click image.Point, radius int, method inpaint.Method) (*PatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoImage
	}

	ctx := c.timing.StartTiming("patch_apply")
	defer c.timing.EndTiming(ctx)
	start := time.Now()

	_, wasClamped := inpaint.ClampToBounds(click, c.current.Width, c.current.Height)

	restored, center, err := c.inpainter.Restore(c.current.Mat, click, radius, method)
	if err != nil {
		c.logger.Error("SessionCoordinator", err, map[string]interface{}{
			"x":      click.X,
			"y":      click.Y,
			"radius": radius,
		})
		return nil, err
	}

	stats, err := CalculatePatchStats(c.current.Mat, restored)
	if err != nil {
		restored.Close()
		return nil, fmt.Errorf("failed to measure patch: %w", err)
	}

	resultImage, err := conversion.MatToImage(restored)
	if err != nil {
		restored.Close()
		return nil, fmt.Errorf("failed to convert patched image: %w", err)
	}

	next := &ImageData{
		Image:      resultImage,
		Mat:        restored,
		Width:      c.current.Width,
		Height:     c.current.Height,
		Channels:   restored.Channels(),
		Format:     c.current.Format,
		SourcePath: c.current.SourcePath,
	}

	c.pushHistoryLocked(c.current)
	c.current = next
	c.patches++

	duration := time.Since(start)

	c.events.Publish(debug.Event{
		Type:      debug.EventPatchApplied,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"x":              center.X,
			"y":              center.Y,
			"radius":         radius,
			"method":         method.String(),
			"duration_ms":    duration.Milliseconds(),
			"changed_pixels": stats.ChangedPixels,
			"clamped":        wasClamped,
		},
	})

	c.logger.Info("SessionCoordinator", "patch applied", map[string]interface{}{
		"x":       center.X,
		"y":       center.Y,
		"radius":  radius,
		"method":  method.String(),
		"changed": stats.ChangedPixels,
		"took":    duration.String(),
	})

	return &PatchResult{
		Point:    center,
		Radius:   radius,
		Method:   method,
		Clamped:  wasClamped,
		Duration: duration,
		Stats:    stats,
	}, nil
}

// Undo returns to the state before the most recent patch.
func (c *Coordinator) Undo() (*ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoImage
	}
	if len(c.history) == 0 {
		return nil, ErrNothingToUndo
	}

	previous := c.history[len(c.history)-1]
	c.history[len(c.history)-1] = nil
	c.history = c.history[:len(c.history)-1]

	replaced := c.current
	c.current = previous
	if replaced != c.original {
		replaced.Mat.Close()
	}
	if c.patches > 0 {
		c.patches--
	}

	c.logger.Debug("SessionCoordinator", "patch undone", map[string]interface{}{
		"remaining": len(c.history),
	})

	return c.current, nil
}

// Reset discards every patch and returns to the original image.
func (c *Coordinator) Reset() (*ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.original == nil {
		return nil, ErrNoImage
	}

	for _, state := range c.history {
		if state != c.original {
			state.Mat.Close()
		}
	}
	c.history = nil

	if c.current != nil && c.current != c.original {
		c.current.Mat.Close()
	}
	c.current = c.original
	c.patches = 0

	c.logger.Debug("SessionCoordinator", "session reset", nil)

	return c.current, nil
}

func (c *Coordinator) SaveTo(writer fyne.URIWriteCloser) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return ErrNoImage
	}
	return c.saver.SaveToWriter(writer, c.current, "")
}

func (c *Coordinator) SaveToPath(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return ErrNoImage
	}
	return c.saver.SaveToPath(path, c.current)
}

func (c *Coordinator) CurrentImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Coordinator) OriginalImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.original
}

// PatchCount reports the net patches applied to the visible image.
func (c *Coordinator) PatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.patches
}

// Cleanup releases every Mat the session holds. The coordinator is
// unusable afterwards except for loading a new image.
func (c *Coordinator) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseSessionLocked()
}

func (c *Coordinator) installLocked(imageData *ImageData) {
	c.releaseSessionLocked()
	c.original = imageData
	c.current = imageData
	c.patches = 0
}

func (c *Coordinator) releaseSessionLocked() {
	for _, state := range c.history {
		if state != c.original {
			state.Mat.Close()
		}
	}
	c.history = nil

	if c.current != nil && c.current != c.original {
		c.current.Mat.Close()
	}
	if c.original != nil {
		c.original.Mat.Close()
	}
	c.current = nil
	c.original = nil
	c.patches = 0
}

func (c *Coordinator) pushHistoryLocked(state *ImageData) {
	c.history = append(c.history, state)
	if len(c.history) <= maxHistory {
		return
	}

	evicted := c.history[0]
	copy(c.history, c.history[1:])
	c.history[len(c.history)-1] = nil
	c.history = c.history[:len(c.history)-1]

	if evicted != c.original {
		evicted.Mat.Close()
	}
}
