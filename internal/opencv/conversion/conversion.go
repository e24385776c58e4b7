package conversion

import (
	"fmt"
	"image"
	"image/color"

	"blotch-banisher/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MatToImage converts a Mat to a standard Go image for display and
// encoding. OpenCV stores color as BGR; the result is RGBA.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()

	// Raw accessors skip the wrapper's per-call validation; bounds are
	// fixed by the loop.
	raw := src.GetMat()

	switch src.Channels() {
	case 1:
		img := image.NewGray(image.Rect(0, 0, cols, rows))
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				img.SetGray(x, y, color.Gray{Y: raw.GetUCharAt(y, x)})
			}
		}
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, cols, rows))
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: raw.GetUCharAt3(y, x, 2),
					G: raw.GetUCharAt3(y, x, 1),
					B: raw.GetUCharAt3(y, x, 0),
					A: 255,
				})
			}
		}
		return img, nil
	case 4:
		img := image.NewRGBA(image.Rect(0, 0, cols, rows))
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: raw.GetUCharAt3(y, x, 2),
					G: raw.GetUCharAt3(y, x, 1),
					B: raw.GetUCharAt3(y, x, 0),
					A: raw.GetUCharAt3(y, x, 3),
				})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
}

// ImageToMat converts a standard Go image to a Mat in OpenCV's native
// layout: CV8UC1 for grayscale, BGR CV8UC3 for everything else.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	return ImageToMatWithTracker(img, nil, "")
}

func ImageToMatWithTracker(img image.Image, memTracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if err := safe.ValidateDimensions(width, height, "image to Mat conversion"); err != nil {
		return nil, err
	}

	if gray, ok := img.(*image.Gray); ok {
		mat, err := safe.NewMatWithTracker(height, width, gocv.MatTypeCV8UC1, memTracker, tag)
		if err != nil {
			return nil, err
		}

		raw := mat.GetMat()
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				raw.SetUCharAt(y, x, gray.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y)
			}
		}
		return mat, nil
	}

	mat, err := safe.NewMatWithTracker(height, width, gocv.MatTypeCV8UC3, memTracker, tag)
	if err != nil {
		return nil, err
	}

	raw := mat.GetMat()
	setBGR := func(x, y int, r, g, b uint8) {
		raw.SetUCharAt3(y, x, 0, b)
		raw.SetUCharAt3(y, x, 1, g)
		raw.SetUCharAt3(y, x, 2, r)
	}

	switch typed := img.(type) {
	case *image.RGBA:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixel := typed.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
				setBGR(x, y, pixel.R, pixel.G, pixel.B)
			}
		}
	case *image.NRGBA:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixel := typed.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y)
				setBGR(x, y, pixel.R, pixel.G, pixel.B)
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				setBGR(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8))
			}
		}
	}

	return mat, nil
}
