package pipeline

import (
	"image"
	"io"
	"time"

	"fyne.io/fyne/v2"

	"blotch-banisher/internal/inpaint"
	"blotch-banisher/internal/opencv/safe"
)

// ImageLoader handles loading images from various sources
type ImageLoader interface {
	LoadFromPath(path string) (*ImageData, error)
	LoadFromReader(reader fyne.URIReadCloser) (*ImageData, error)
	LoadFromBytes(data []byte, format string) (*ImageData, error)
}

// ImageSaver handles saving images to various formats
type ImageSaver interface {
	SaveToWriter(writer io.Writer, imageData *ImageData, format string) error
	SaveToPath(path string, imageData *ImageData) error
}

// SessionCoordinator manages one editing session: a loaded image, the
// patches applied to it, and the undo history.
type SessionCoordinator interface {
	LoadFromPath(path string) (*ImageData, error)
	LoadFromReader(reader fyne.URIReadCloser) (*ImageData, error)
	ApplyPatch(click image.Point, radius int, method inpaint.Method) (*PatchResult, error)
	Undo() (*ImageData, error)
	Reset() (*ImageData, error)
	SaveTo(writer fyne.URIWriteCloser) error
	SaveToPath(path string) error
	CurrentImage() *ImageData
	OriginalImage() *ImageData
	PatchCount() int
	Cleanup()
}

// ImageData carries one image state in both representations: the Go
// image for display and encoding, the Mat for OpenCV operations. Both
// describe the same pixels; the Mat is the working copy.
type ImageData struct {
	Image      image.Image
	Mat        *safe.Mat
	Width      int
	Height     int
	Channels   int
	Format     string
	SourcePath string
}

// PatchResult describes one applied patch.
type PatchResult struct {
	Point    image.Point
	Radius   int
	Method   inpaint.Method
	Clamped  bool
	Duration time.Duration
	Stats    PatchStats
}
