package inpaint

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"blotch-banisher/internal/opencv/safe"
)

const (
	DefaultRadius = 10
	MinRadius     = 1
	MaxRadius     = 200
)

// MatProvider hands out pooled mats. Satisfied by memory.Manager.
type MatProvider interface {
	GetMat(rows, cols int, matType gocv.MatType, tag string) (*safe.Mat, error)
	ReleaseMat(mat *safe.Mat)
}

// ClampToBounds moves pt onto the nearest pixel inside a width x height
// image. The second return reports whether clamping was needed.
func ClampToBounds(pt image.Point, width, height int) (image.Point, bool) {
	clamped := pt
	if clamped.X < 0 {
		clamped.X = 0
	}
	if clamped.X >= width {
		clamped.X = width - 1
	}
	if clamped.Y < 0 {
		clamped.Y = 0
	}
	if clamped.Y >= height {
		clamped.Y = height - 1
	}
	return clamped, clamped != pt
}

// NewClickMask builds a single-channel mask of the given image size
// with a filled circle of the given radius at the click point. The
// click is clamped onto the image first; the circle itself is clipped
// at the borders by the draw call, so the mask never marks pixels
// outside the image. The mask comes from the provider's pool and must
// be returned with ReleaseMat.
func NewClickMask(mats MatProvider, width, height int, click image.Point, radius int) (*safe.Mat, image.Point, error) {
	if width <= 0 || height <= 0 {
		return nil, image.Point{}, fmt.Errorf("invalid mask size %dx%d", width, height)
	}
	if radius < MinRadius || radius > MaxRadius {
		return nil, image.Point{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRadius, radius, MinRadius, MaxRadius)
	}

	mask, err := mats.GetMat(height, width, gocv.MatTypeCV8UC1, "click_mask")
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("failed to get mask mat: %w", err)
	}

	// Pooled mats keep their previous contents.
	if err := mask.SetTo(gocv.Scalar{}); err != nil {
		mats.ReleaseMat(mask)
		return nil, image.Point{}, fmt.Errorf("failed to zero mask: %w", err)
	}

	center, _ := ClampToBounds(click, width, height)

	raw := mask.GetMat()
	gocv.Circle(&raw, center, radius, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	return mask, center, nil
}
