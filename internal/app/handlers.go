package app

import (
	"fmt"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"blotch-banisher/internal/console"
	"blotch-banisher/internal/debug"
	"blotch-banisher/internal/inpaint"
	"blotch-banisher/internal/pipeline"
)

// GUI is the part of the GUI manager the handlers drive.
type GUI interface {
	ShowImage(img image.Image)
	UpdateStatus(status string)
	UpdateImageInfo(width, height int, format string)
	UpdatePatchCount(count int)
	ShowError(title string, err error)
	GetWindow() fyne.Window
}

// Handlers connect GUI events to the session coordinator. They hold
// the only mutable UI-side state: the method and radius the next
// click will use.
type Handlers struct {
	coordinator pipeline.SessionCoordinator
	gui         GUI
	reporter    *console.Reporter
	logger      debug.Logger

	mu     sync.Mutex
	method inpaint.Method
	radius int
}

func NewHandlers(coord pipeline.SessionCoordinator, g GUI, reporter *console.Reporter, debugCoord debug.Coordinator, method inpaint.Method, radius int) *Handlers {
	return &Handlers{
		coordinator: coord,
		gui:         g,
		reporter:    reporter,
		logger:      debugCoord.Logger(),
		method:      method,
		radius:      radius,
	}
}

// HandleCanvasTap runs the whole click pipeline synchronously: patch,
// redisplay, report. Patches are local to a small circle, so there is
// nothing worth moving off the event goroutine.
func (h *Handlers) HandleCanvasTap(pt image.Point) {
	h.mu.Lock()
	method := h.method
	radius := h.radius
	h.mu.Unlock()

	result, err := h.coordinator.ApplyPatch(pt, radius, method)
	if err != nil {
		h.logger.Error("Handlers", err, map[string]interface{}{
			"x":      pt.X,
			"y":      pt.Y,
			"radius": radius,
		})
		h.reporter.PatchFailed(err)
		h.gui.UpdateStatus(fmt.Sprintf("Patch failed: %v", err))
		return
	}

	if result.Clamped {
		h.logger.Warning("Handlers", "click outside image, clamped", map[string]interface{}{
			"clicked_x": pt.X,
			"clicked_y": pt.Y,
			"patched_x": result.Point.X,
			"patched_y": result.Point.Y,
		})
		h.reporter.Clamped(pt, result.Point)
	}

	if current := h.coordinator.CurrentImage(); current != nil {
		h.gui.ShowImage(current.Image)
	}

	count := h.coordinator.PatchCount()
	h.gui.UpdatePatchCount(count)
	h.gui.UpdateStatus(fmt.Sprintf("Banished %d px at (%d,%d) in %s",
		result.Stats.ChangedPixels, result.Point.X, result.Point.Y,
		result.Duration.Round(time.Millisecond)))
	h.reporter.PatchApplied(count, result.Method.String(), result.Point,
		result.Radius, result.Stats.ChangedPixels, result.Duration)
}

func (h *Handlers) HandleOpen() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			h.gui.ShowError("File Open Error", err)
			return
		}
		if reader == nil {
			return
		}

		h.gui.UpdateStatus("Loading image...")

		go func() {
			imageData, loadErr := h.coordinator.LoadFromReader(reader)
			reader.Close()

			fyne.Do(func() {
				if loadErr != nil {
					h.reporter.LoadFailed(reader.URI().Path(), loadErr)
					h.gui.ShowError("Image Load Error", loadErr)
					h.gui.UpdateStatus("Ready")
					return
				}

				h.gui.ShowImage(imageData.Image)
				h.gui.UpdateImageInfo(imageData.Width, imageData.Height, imageData.Format)
				h.gui.UpdatePatchCount(0)
				h.gui.UpdateStatus("Image loaded")
				h.reporter.ImageLoaded(imageData.SourcePath, imageData.Width, imageData.Height, imageData.Format)
			})
		}()
	}, h.gui.GetWindow())
}

func (h *Handlers) HandleSave() {
	if h.coordinator.CurrentImage() == nil {
		h.gui.ShowError("Save Error", pipeline.ErrNoImage)
		return
	}

	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			h.gui.ShowError("File Save Error", err)
			return
		}
		if writer == nil {
			return
		}

		h.gui.UpdateStatus("Saving image...")

		go func() {
			saveErr := h.coordinator.SaveTo(writer)
			writer.Close()

			fyne.Do(func() {
				if saveErr != nil {
					h.reporter.SaveFailed(saveErr)
					h.gui.ShowError("Image Save Error", saveErr)
					h.gui.UpdateStatus("Save failed")
					return
				}

				h.reporter.Saved(writer.URI().Path())
				h.gui.UpdateStatus("Image saved")
			})
		}()
	}, h.gui.GetWindow())
}

func (h *Handlers) HandleUndo() {
	restored, err := h.coordinator.Undo()
	if err != nil {
		h.reporter.UndoFailed(err)
		h.gui.UpdateStatus("Nothing to undo")
		return
	}

	h.gui.ShowImage(restored.Image)
	count := h.coordinator.PatchCount()
	h.gui.UpdatePatchCount(count)
	h.gui.UpdateStatus("Undid last patch")
	h.reporter.Undone(count)
}

func (h *Handlers) HandleReset() {
	original, err := h.coordinator.Reset()
	if err != nil {
		h.gui.UpdateStatus("Nothing to reset")
		return
	}

	h.gui.ShowImage(original.Image)
	h.gui.UpdatePatchCount(0)
	h.gui.UpdateStatus("Restored original image")
	h.reporter.ResetDone()
}

// HandleMethodChange takes the selector's display label.
func (h *Handlers) HandleMethodChange(label string) {
	method, err := inpaint.ParseMethod(label)
	if err != nil {
		h.logger.Warning("Handlers", "unknown method label", map[string]interface{}{
			"label": label,
		})
		return
	}

	h.mu.Lock()
	h.method = method
	h.mu.Unlock()

	h.reporter.MethodSwitched(method.DisplayName())
	h.gui.UpdateStatus(fmt.Sprintf("Method: %s", method.DisplayName()))
}

func (h *Handlers) HandleRadiusChange(radius int) {
	h.mu.Lock()
	h.radius = radius
	h.mu.Unlock()

	h.reporter.RadiusChanged(radius)
}

// CurrentMethod reports the method the next click will use.
func (h *Handlers) CurrentMethod() inpaint.Method {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.method
}

// CurrentRadius reports the radius the next click will use.
func (h *Handlers) CurrentRadius() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.radius
}
