package app

import (
	"github.com/rs/zerolog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"blotch-banisher/internal/config"
	"blotch-banisher/internal/console"
	"blotch-banisher/internal/debug"
	"blotch-banisher/internal/gui"
	"blotch-banisher/internal/inpaint"
	"blotch-banisher/internal/opencv/memory"
	"blotch-banisher/internal/pipeline"
	"blotch-banisher/internal/shutdown"
)

const (
	AppName    = "Blotch Banisher"
	AppID      = "com.imageprocessing.blotchbanisher"
	AppVersion = "1.0.0"

	ToolbarHeight   = 64
	StatusBarHeight = 40
	MinWindowWidth  = 800
	MinWindowHeight = 600
	MaxWindowWidth  = 1600
	MaxWindowHeight = 1000
)

type Application struct {
	cfg           config.Config
	fyneApp       fyne.App
	window        fyne.Window
	guiManager    *gui.Manager
	coordinator   pipeline.SessionCoordinator
	memoryManager *memory.Manager
	debugCoord    debug.Coordinator
	reporter      *console.Reporter
	handlers      *Handlers
	lifecycle     *Lifecycle
	shutdownMgr   *shutdown.Manager
}

// New builds the whole application around an already validated config.
// The image is loaded before any window exists, so a bad path fails on
// the console with a non-zero exit instead of an empty window.
func New(cfg config.Config, reporter *console.Reporter) (*Application, error) {
	debugCoord := debug.NewCoordinator(debugConfigFrom(cfg))
	logger := debugCoord.Logger()

	method, err := inpaint.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}

	logger.Info("Application", "starting application", map[string]interface{}{
		"version": AppVersion,
		"image":   cfg.ImagePath,
		"method":  method.String(),
		"radius":  cfg.Radius,
	})

	memoryManager := memory.NewManager(logger, debugCoord.MemoryTracker())
	coordinator := pipeline.NewCoordinator(memoryManager, debugCoord)

	imageData, err := coordinator.LoadFromPath(cfg.ImagePath)
	if err != nil {
		return nil, err
	}
	reporter.ImageLoaded(cfg.ImagePath, imageData.Width, imageData.Height, imageData.Format)

	app := fyneapp.NewWithID(AppID)
	window := app.NewWindow(AppName)
	window.Resize(windowSizeFor(imageData.Width, imageData.Height))
	window.SetPadded(false)
	window.CenterOnScreen()
	window.SetMaster()

	guiManager, err := gui.NewManager(window, debugCoord)
	if err != nil {
		return nil, err
	}
	guiManager.ApplyDefaults(method.DisplayName(), cfg.Radius)

	handlers := NewHandlers(coordinator, guiManager, reporter, debugCoord, method, cfg.Radius)
	lifecycle := NewLifecycle(cfg, coordinator, memoryManager, debugCoord, guiManager, reporter)

	shutdownMgr := shutdown.NewManager(logger)
	shutdownMgr.Register(&appQuitter{app: app})
	shutdownMgr.Register(lifecycle)

	application := &Application{
		cfg:           cfg,
		fyneApp:       app,
		window:        window,
		guiManager:    guiManager,
		coordinator:   coordinator,
		memoryManager: memoryManager,
		debugCoord:    debugCoord,
		reporter:      reporter,
		handlers:      handlers,
		lifecycle:     lifecycle,
		shutdownMgr:   shutdownMgr,
	}
	application.setupHandlers()
	application.setupMenus()

	logger.Info("Application", "initialization complete", nil)
	return application, nil
}

func (a *Application) setupHandlers() {
	a.guiManager.SetCanvasTapHandler(a.handlers.HandleCanvasTap)
	a.guiManager.SetOpenHandler(a.handlers.HandleOpen)
	a.guiManager.SetSaveHandler(a.handlers.HandleSave)
	a.guiManager.SetUndoHandler(a.handlers.HandleUndo)
	a.guiManager.SetResetHandler(a.handlers.HandleReset)
	a.guiManager.SetMethodChangeHandler(a.handlers.HandleMethodChange)
	a.guiManager.SetRadiusChangeHandler(a.handlers.HandleRadiusChange)
}

// Run shows the loaded image and blocks in the Fyne event loop until
// Escape, window close, or a termination signal.
func (a *Application) Run() error {
	logger := a.debugCoord.Logger()

	a.window.SetCloseIntercept(func() {
		logger.Info("Application", "window close requested", nil)
		a.shutdownMgr.Shutdown()
	})

	a.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		if key.Name != fyne.KeyEscape {
			return
		}
		logger.Info("Application", "escape pressed", nil)
		a.shutdownMgr.Shutdown()
	})

	a.shutdownMgr.Listen()

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.showLoadedImage()

	a.window.Show()
	logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	return nil
}

func (a *Application) showLoadedImage() {
	current := a.coordinator.CurrentImage()
	if current == nil {
		return
	}

	a.guiManager.ShowImage(current.Image)
	a.guiManager.UpdateImageInfo(current.Width, current.Height, current.Format)
	a.guiManager.UpdateStatus("Click a blotch to banish it")
}

// windowSizeFor sizes the window to the image plus chrome, inside the
// min/max bounds. Fill-contain scaling absorbs any mismatch.
func windowSizeFor(imageW, imageH int) fyne.Size {
	width := float32(imageW)
	height := float32(imageH) + ToolbarHeight + StatusBarHeight

	if width < MinWindowWidth {
		width = MinWindowWidth
	}
	if width > MaxWindowWidth {
		width = MaxWindowWidth
	}
	if height < MinWindowHeight {
		height = MinWindowHeight
	}
	if height > MaxWindowHeight {
		height = MaxWindowHeight
	}

	return fyne.NewSize(width, height)
}

func debugConfigFrom(cfg config.Config) debug.Config {
	var debugConfig debug.Config

	switch {
	case cfg.Production:
		debugConfig = debug.ProductionConfig()
	case cfg.Debug:
		debugConfig = debug.DefaultConfig()
		debugConfig.LogLevel = zerolog.DebugLevel
		debugConfig.EnableStackTraces = true
	default:
		debugConfig = debug.DefaultConfig()
	}

	if cfg.JSONLogs {
		debugConfig.UseJSONLogging = true
	}
	debugConfig.TrailDir = cfg.TrailDir

	return debugConfig
}

// appQuitter hands the Fyne event loop its quit call as the final
// shutdown step, after the lifecycle has finished its report.
type appQuitter struct {
	app fyne.App
}

func (q *appQuitter) Shutdown() {
	fyne.Do(q.app.Quit)
}
