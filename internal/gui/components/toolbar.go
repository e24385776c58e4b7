package components

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"blotch-banisher/internal/inpaint"
)

const (
	SliderMinRadius = 1
	SliderMaxRadius = 50
)

type Toolbar struct {
	container    *fyne.Container
	OpenButton   *widget.Button
	SaveButton   *widget.Button
	UndoButton   *widget.Button
	ResetButton  *widget.Button
	MethodGroup  *fyne.Container
	methodRadio  *widget.RadioGroup
	RadiusGroup  *fyne.Container
	radiusSlider *widget.Slider
	radiusLabel  *widget.Label

	openHandler         func()
	saveHandler         func()
	undoHandler         func()
	resetHandler        func()
	methodChangeHandler func(string)
	radiusChangeHandler func(int)
}

func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.setupToolbar()
	return toolbar
}

func (t *Toolbar) setupToolbar() {
	// Create toolbar background with controllable border
	background := canvas.NewRectangle(color.RGBA{R: 250, G: 249, B: 245, A: 255})
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeWidth = 1.0
	border.StrokeColor = color.RGBA{R: 231, G: 231, B: 231, A: 255}

	// Left section: file actions with high importance styling
	t.OpenButton = widget.NewButton("Open", t.onOpen)
	t.OpenButton.Importance = widget.HighImportance
	t.SaveButton = widget.NewButton("Save", t.onSave)
	t.SaveButton.Importance = widget.HighImportance
	leftSection := container.NewHBox(t.OpenButton, t.SaveButton)

	// Method section
	methodLabel := widget.NewLabel("Method:")
	t.methodRadio = widget.NewRadioGroup(methodOptions(), t.onMethodSelected)
	t.methodRadio.Horizontal = true
	t.methodRadio.Required = true
	t.methodRadio.SetSelected(inpaint.MethodTelea.DisplayName())
	t.MethodGroup = container.NewHBox(methodLabel, t.methodRadio)

	// Radius section: slider with a live value label. The label
	// follows every drag tick; the handler only fires when the drag
	// ends, so one drag is one radius change, not fifty.
	t.radiusLabel = widget.NewLabel(radiusText(inpaint.DefaultRadius))
	t.radiusSlider = widget.NewSlider(SliderMinRadius, SliderMaxRadius)
	t.radiusSlider.Step = 1
	t.radiusSlider.SetValue(inpaint.DefaultRadius)
	t.radiusSlider.OnChanged = t.onRadiusDragged
	t.radiusSlider.OnChangeEnded = t.onRadiusChanged
	slider := container.NewGridWrap(fyne.NewSize(160, t.radiusSlider.MinSize().Height), t.radiusSlider)
	t.RadiusGroup = container.NewHBox(slider, t.radiusLabel)

	// Right section: session actions
	t.UndoButton = widget.NewButton("Undo", t.onUndo)
	t.ResetButton = widget.NewButton("Reset", t.onReset)
	rightSection := container.NewHBox(t.UndoButton, t.ResetButton)

	centerSection := container.NewHBox(
		t.MethodGroup,
		widget.NewSeparator(),
		t.RadiusGroup,
	)

	toolbarContent := container.NewBorder(
		nil, nil,
		leftSection,
		rightSection,
		centerSection,
	)

	// Create content with 1px padding for border effect
	contentWithPadding := container.NewPadded(toolbarContent)

	// Layer border, background and content
	t.container = container.NewStack(
		border,
		container.NewPadded(
			container.NewStack(background, contentWithPadding),
		),
	)
}

func methodOptions() []string {
	methods := inpaint.Methods()
	options := make([]string, len(methods))
	for i, m := range methods {
		options[i] = m.DisplayName()
	}
	return options
}

func radiusText(radius int) string {
	return fmt.Sprintf("Radius: %d px", radius)
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

func (t *Toolbar) SetOpenHandler(handler func()) {
	t.openHandler = handler
}

func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

func (t *Toolbar) SetUndoHandler(handler func()) {
	t.undoHandler = handler
}

func (t *Toolbar) SetResetHandler(handler func()) {
	t.resetHandler = handler
}

func (t *Toolbar) SetMethodChangeHandler(handler func(string)) {
	t.methodChangeHandler = handler
}

func (t *Toolbar) SetRadiusChangeHandler(handler func(int)) {
	t.radiusChangeHandler = handler
}

// SelectedMethod returns the display name of the chosen method.
func (t *Toolbar) SelectedMethod() string {
	return t.methodRadio.Selected
}

func (t *Toolbar) Radius() int {
	return int(t.radiusSlider.Value)
}

// SetMethod selects the method with the given display name. Unknown
// names leave the selection alone.
func (t *Toolbar) SetMethod(displayName string) {
	t.methodRadio.SetSelected(displayName)
}

func (t *Toolbar) SetRadius(radius int) {
	t.radiusSlider.SetValue(float64(radius))
}

func (t *Toolbar) onOpen() {
	if t.openHandler != nil {
		t.openHandler()
	}
}

func (t *Toolbar) onSave() {
	if t.saveHandler != nil {
		t.saveHandler()
	}
}

func (t *Toolbar) onUndo() {
	if t.undoHandler != nil {
		t.undoHandler()
	}
}

func (t *Toolbar) onReset() {
	if t.resetHandler != nil {
		t.resetHandler()
	}
}

func (t *Toolbar) onMethodSelected(method string) {
	if method == "" {
		return
	}
	if t.methodChangeHandler != nil {
		t.methodChangeHandler(method)
	}
}

func (t *Toolbar) onRadiusDragged(value float64) {
	t.radiusLabel.SetText(radiusText(int(value)))
}

func (t *Toolbar) onRadiusChanged(value float64) {
	t.radiusLabel.SetText(radiusText(int(value)))
	if t.radiusChangeHandler != nil {
		t.radiusChangeHandler(int(value))
	}
}
