package gui

import (
	"image"

	"blotch-banisher/internal/debug"
	"blotch-banisher/internal/gui/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

type Manager struct {
	window     fyne.Window
	debugCoord debug.Coordinator
	logger     debug.Logger
	isShutdown bool

	imageCanvas *components.ImageCanvas
	toolbar     *components.Toolbar
	statusBar   *components.StatusBar

	canvasTapHandler    func(image.Point)
	openHandler         func()
	saveHandler         func()
	undoHandler         func()
	resetHandler        func()
	methodChangeHandler func(string)
	radiusChangeHandler func(int)
}

func NewManager(window fyne.Window, debugCoord debug.Coordinator) (*Manager, error) {
	logger := debugCoord.Logger()

	manager := &Manager{
		window:      window,
		debugCoord:  debugCoord,
		logger:      logger,
		isShutdown:  false,
		imageCanvas: components.NewImageCanvas(),
		toolbar:     components.NewToolbar(),
		statusBar:   components.NewStatusBar(),
	}

	logger.Info("GUIManager", "initialized", map[string]interface{}{
		"min_canvas_width":  components.MinCanvasWidth,
		"min_canvas_height": components.MinCanvasHeight,
	})

	return manager, nil
}

func (m *Manager) GetMainContainer() *fyne.Container {
	return container.NewBorder(
		m.toolbar.GetContainer(),
		m.statusBar.GetContainer(),
		nil, nil,
		m.imageCanvas,
	)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

func (m *Manager) SetCanvasTapHandler(handler func(image.Point)) {
	m.canvasTapHandler = handler
	m.imageCanvas.SetOnTapped(func(pt image.Point) {
		m.logger.Debug("GUIManager", "canvas tapped", map[string]interface{}{
			"x": pt.X,
			"y": pt.Y,
		})

		handler(pt)
	})
}

func (m *Manager) SetOpenHandler(handler func()) {
	m.openHandler = handler
	m.toolbar.SetOpenHandler(handler)
}

func (m *Manager) SetSaveHandler(handler func()) {
	m.saveHandler = handler
	m.toolbar.SetSaveHandler(handler)
}

func (m *Manager) SetUndoHandler(handler func()) {
	m.undoHandler = handler
	m.toolbar.SetUndoHandler(handler)
}

func (m *Manager) SetResetHandler(handler func()) {
	m.resetHandler = handler
	m.toolbar.SetResetHandler(handler)
}

func (m *Manager) SetMethodChangeHandler(handler func(string)) {
	m.methodChangeHandler = handler
	m.toolbar.SetMethodChangeHandler(func(method string) {
		m.logger.Debug("GUIManager", "method change requested", map[string]interface{}{
			"method": method,
		})

		handler(method)
	})
}

func (m *Manager) SetRadiusChangeHandler(handler func(int)) {
	m.radiusChangeHandler = handler
	m.toolbar.SetRadiusChangeHandler(func(radius int) {
		m.logger.Debug("GUIManager", "radius change requested", map[string]interface{}{
			"radius": radius,
		})

		handler(radius)
	})
}

func (m *Manager) SelectedMethod() string {
	return m.toolbar.SelectedMethod()
}

func (m *Manager) Radius() int {
	return m.toolbar.Radius()
}

// ApplyDefaults pushes the configured method and radius into the
// toolbar. Call before wiring change handlers so the initial state
// does not fire them.
func (m *Manager) ApplyDefaults(methodDisplayName string, radius int) {
	m.toolbar.SetMethod(methodDisplayName)
	m.toolbar.SetRadius(radius)
}

func (m *Manager) ShowImage(img image.Image) {
	if img == nil {
		return
	}

	fyne.Do(func() {
		m.imageCanvas.SetImage(img)
		m.logger.Debug("GUIManager", "image shown", map[string]interface{}{
			"bounds": img.Bounds(),
		})
	})
}

func (m *Manager) UpdateStatus(status string) {
	fyne.Do(func() {
		m.statusBar.SetStatus(status)
		m.logger.Debug("GUIManager", "status updated", map[string]interface{}{
			"status": status,
		})
	})
}

func (m *Manager) UpdateImageInfo(width, height int, format string) {
	fyne.Do(func() {
		m.statusBar.SetImageInfo(width, height, format)
		m.logger.Debug("GUIManager", "image info updated", map[string]interface{}{
			"width":  width,
			"height": height,
			"format": format,
		})
	})
}

func (m *Manager) UpdatePatchCount(count int) {
	fyne.Do(func() {
		m.statusBar.SetPatchCount(count)
	})
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})

	fyne.Do(func() {
		dialog.ShowError(err, m.window)
	})
}

func (m *Manager) Shutdown() {
	if m.isShutdown {
		return
	}

	m.isShutdown = true
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}
