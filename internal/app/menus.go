package app

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// setupMenus builds the main menu. Every entry routes through the same
// handlers as the toolbar, so the two surfaces cannot drift apart.
func (a *Application) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", func() {
			a.handlers.HandleOpen()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Image As...", func() {
			a.handlers.HandleSave()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.shutdownMgr.Shutdown()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo Patch", func() {
			a.handlers.HandleUndo()
		}),
		fyne.NewMenuItem("Reset Image", func() {
			a.handlers.HandleReset()
		}),
	)

	debugMenu := fyne.NewMenu("Debug",
		fyne.NewMenuItem("Mat Stats", func() {
			dialog.ShowInformation("Mat Statistics", a.matStats(), a.window)
		}),
		fyne.NewMenuItem("Session Report", func() {
			dialog.ShowInformation("Session Report", a.sessionReport(), a.window)
		}),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, debugMenu))
}

func (a *Application) matStats() string {
	stats := a.memoryManager.GetStats()
	return fmt.Sprintf(`Mat Statistics:
- Created: %d
- Reused: %d
- Pooled: %d
- Closed: %d
- Active: %d`,
		stats.Created,
		stats.Reused,
		stats.Pooled,
		stats.Closed,
		stats.ActiveMats)
}

func (a *Application) sessionReport() string {
	avg := a.debugCoord.TimingTracker().GetAverageTime("patch_apply")
	return fmt.Sprintf(`Session Report:
- Patches applied: %d
- Clicks recorded: %d
- Average patch time: %s`,
		a.coordinator.PatchCount(),
		a.debugCoord.SessionRecorder().Count(),
		avg.Round(time.Millisecond))
}
