package components

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blotch-banisher/internal/inpaint"
)

func TestToolbarDefaults(t *testing.T) {
	test.NewApp()
	toolbar := NewToolbar()

	assert.Equal(t, inpaint.MethodTelea.DisplayName(), toolbar.SelectedMethod())
	assert.Equal(t, inpaint.DefaultRadius, toolbar.Radius())
	require.NotNil(t, toolbar.GetContainer())
}

func TestToolbarButtonHandlers(t *testing.T) {
	test.NewApp()
	toolbar := NewToolbar()

	var fired []string
	toolbar.SetOpenHandler(func() { fired = append(fired, "open") })
	toolbar.SetSaveHandler(func() { fired = append(fired, "save") })
	toolbar.SetUndoHandler(func() { fired = append(fired, "undo") })
	toolbar.SetResetHandler(func() { fired = append(fired, "reset") })

	test.Tap(toolbar.OpenButton)
	test.Tap(toolbar.SaveButton)
	test.Tap(toolbar.UndoButton)
	test.Tap(toolbar.ResetButton)

	assert.Equal(t, []string{"open", "save", "undo", "reset"}, fired)
}

func TestToolbarMethodSelection(t *testing.T) {
	test.NewApp()
	toolbar := NewToolbar()

	var selected string
	toolbar.SetMethodChangeHandler(func(method string) { selected = method })

	toolbar.methodRadio.SetSelected(inpaint.MethodNavierStokes.DisplayName())

	assert.Equal(t, inpaint.MethodNavierStokes.DisplayName(), selected)
	assert.Equal(t, inpaint.MethodNavierStokes.DisplayName(), toolbar.SelectedMethod())
}

func TestToolbarRadiusSlider(t *testing.T) {
	test.NewApp()
	toolbar := NewToolbar()

	var radius int
	toolbar.SetRadiusChangeHandler(func(r int) { radius = r })

	toolbar.radiusSlider.SetValue(25)

	assert.Equal(t, 25, radius)
	assert.Equal(t, 25, toolbar.Radius())
	assert.Equal(t, "Radius: 25 px", toolbar.radiusLabel.Text)
}

func TestToolbarButtonsSurviveMissingHandlers(t *testing.T) {
	test.NewApp()
	toolbar := NewToolbar()

	// No handlers wired: taps must not panic.
	test.Tap(toolbar.OpenButton)
	test.Tap(toolbar.UndoButton)
	toolbar.radiusSlider.SetValue(12)
}
