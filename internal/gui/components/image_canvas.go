package components

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	MinCanvasWidth  = 320
	MinCanvasHeight = 240
)

// ImageCanvas shows the working image scaled to fit and reports clicks
// in image pixel coordinates, so callers never see display geometry.
type ImageCanvas struct {
	widget.BaseWidget

	raster   *canvas.Image
	imageW   int
	imageH   int
	onTapped func(image.Point)
}

func NewImageCanvas() *ImageCanvas {
	raster := canvas.NewImageFromImage(nil)
	raster.FillMode = canvas.ImageFillContain
	raster.SetMinSize(fyne.NewSize(MinCanvasWidth, MinCanvasHeight))

	ic := &ImageCanvas{raster: raster}
	ic.ExtendBaseWidget(ic)
	return ic
}

// SetImage swaps the displayed image. Must run on the UI thread.
func (ic *ImageCanvas) SetImage(img image.Image) {
	if img == nil {
		return
	}

	bounds := img.Bounds()
	ic.imageW = bounds.Dx()
	ic.imageH = bounds.Dy()
	ic.raster.Image = img
	ic.raster.Refresh()
}

func (ic *ImageCanvas) SetOnTapped(handler func(image.Point)) {
	ic.onTapped = handler
}

func (ic *ImageCanvas) ImageSize() (int, int) {
	return ic.imageW, ic.imageH
}

// Tapped implements fyne.Tappable. Clicks on the letterbox margins
// around the scaled image are ignored.
func (ic *ImageCanvas) Tapped(event *fyne.PointEvent) {
	if ic.onTapped == nil || ic.imageW == 0 || ic.imageH == 0 {
		return
	}

	pt, ok := mapDisplayToImage(event.Position, ic.Size(), ic.imageW, ic.imageH)
	if !ok {
		return
	}

	ic.onTapped(pt)
}

// CreateRenderer creates the renderer for ImageCanvas
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ic.raster)
}

// mapDisplayToImage converts a widget-local click position into image
// pixel coordinates. ImageFillContain scales the image by the smaller
// of the two axis ratios and centers it, so the inverse is one scale
// and one offset per axis.
func mapDisplayToImage(pos fyne.Position, area fyne.Size, imageW, imageH int) (image.Point, bool) {
	if imageW <= 0 || imageH <= 0 || area.Width <= 0 || area.Height <= 0 {
		return image.Point{}, false
	}

	scale := area.Width / float32(imageW)
	if vertical := area.Height / float32(imageH); vertical < scale {
		scale = vertical
	}

	offsetX := (area.Width - float32(imageW)*scale) / 2
	offsetY := (area.Height - float32(imageH)*scale) / 2

	x := (pos.X - offsetX) / scale
	y := (pos.Y - offsetY) / scale
	if x < 0 || y < 0 || x >= float32(imageW) || y >= float32(imageH) {
		return image.Point{}, false
	}

	return image.Pt(int(x), int(y)), true
}
