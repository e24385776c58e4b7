package app

import (
	"blotch-banisher/internal/config"
	"blotch-banisher/internal/console"
	"blotch-banisher/internal/debug"
	"blotch-banisher/internal/gui"
	"blotch-banisher/internal/opencv/memory"
	"blotch-banisher/internal/pipeline"
)

// Lifecycle tears the session down in dependency order and prints the
// end-of-session report.
type Lifecycle struct {
	cfg           config.Config
	coordinator   pipeline.SessionCoordinator
	memoryManager *memory.Manager
	debugCoord    debug.Coordinator
	guiManager    *gui.Manager
	reporter      *console.Reporter
	logger        debug.Logger
	isShutdown    bool
}

func NewLifecycle(cfg config.Config, coord pipeline.SessionCoordinator, mm *memory.Manager, dc debug.Coordinator, gm *gui.Manager, reporter *console.Reporter) *Lifecycle {
	return &Lifecycle{
		cfg:           cfg,
		coordinator:   coord,
		memoryManager: mm,
		debugCoord:    dc,
		guiManager:    gm,
		reporter:      reporter,
		logger:        dc.Logger(),
	}
}

func (l *Lifecycle) Shutdown() {
	if l.isShutdown {
		return
	}
	l.isShutdown = true

	l.logger.Info("Lifecycle", "shutdown sequence initiated", nil)

	if l.guiManager != nil {
		l.guiManager.Shutdown()
	}

	// Drain the event bus before reading the recorder, so the last
	// click still makes it into the trail.
	l.debugCoord.Shutdown()

	l.writeTrail()
	l.printSummary()

	l.coordinator.Cleanup()
	l.logger.Debug("Lifecycle", "coordinator cleanup completed", nil)

	l.memoryManager.Cleanup()
	l.logger.Debug("Lifecycle", "memory manager cleanup completed", nil)

	l.logger.Info("Lifecycle", "shutdown sequence completed", nil)
}

// writeTrail renders the session's click trail over the final image.
// Runs before coordinator cleanup while the image is still alive.
func (l *Lifecycle) writeTrail() {
	if !l.cfg.Trail {
		return
	}

	recorder := l.debugCoord.SessionRecorder()
	if recorder.Count() == 0 {
		return
	}

	current := l.coordinator.CurrentImage()
	if current == nil || current.Image == nil {
		return
	}

	path, err := recorder.WriteTrail(current.Image)
	if err != nil {
		l.logger.Error("Lifecycle", err, map[string]interface{}{
			"trail_dir": l.cfg.TrailDir,
		})
		l.reporter.TrailFailed(err)
		return
	}

	l.reporter.TrailWritten(path)
}

func (l *Lifecycle) printSummary() {
	stats := l.memoryManager.GetStats()
	leaks := l.debugCoord.FileTracker().DetectLeaks()
	avgPatch := l.debugCoord.TimingTracker().GetAverageTime("patch_apply")

	l.reporter.Summary(l.coordinator.PatchCount(), avgPatch, stats.Created, stats.Reused, len(leaks))
}
