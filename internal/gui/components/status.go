package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container      *fyne.Container
	statusLabel    *widget.Label
	imageInfoLabel *widget.Label
	patchLabel     *widget.Label
}

func NewStatusBar() *StatusBar {
	statusLabel := widget.NewLabel("Ready")
	imageInfoLabel := widget.NewLabel("No image")
	patchLabel := widget.NewLabel("Patches: 0")

	sessionContainer := container.NewHBox(
		imageInfoLabel,
		widget.NewSeparator(),
		patchLabel,
	)

	mainContainer := container.NewBorder(
		nil, nil,
		statusLabel,
		sessionContainer,
	)

	return &StatusBar{
		container:      mainContainer,
		statusLabel:    statusLabel,
		imageInfoLabel: imageInfoLabel,
		patchLabel:     patchLabel,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) SetImageInfo(width, height int, format string) {
	sb.imageInfoLabel.SetText(fmt.Sprintf("%dx%d %s", width, height, format))
}

func (sb *StatusBar) SetPatchCount(count int) {
	sb.patchLabel.SetText(fmt.Sprintf("Patches: %d", count))
}
