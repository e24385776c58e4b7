package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"blotch-banisher/internal/opencv/safe"
)

type imageLoader struct {
	memTracker    safe.MemoryTracker
	fileTracker   FileTracker
	logger        Logger
	timingTracker TimingTracker
}

func (l *imageLoader) LoadFromPath(path string) (*ImageData, error) {
	ctx := l.timingTracker.StartTiming("load_from_path")
	defer l.timingTracker.EndTiming(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	l.fileTracker.TrackOpen(path, file.Fd())
	defer func() {
		l.fileTracker.TrackClose(path, file.Fd())
		file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	imageData, err := l.LoadFromBytes(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}

	imageData.SourcePath = path
	return imageData, nil
}

func (l *imageLoader) LoadFromReader(reader fyne.URIReadCloser) (*ImageData, error) {
	ctx := l.timingTracker.StartTiming("load_from_reader")
	defer l.timingTracker.EndTiming(ctx)

	originalURI := reader.URI()
	uriExtension := strings.ToLower(originalURI.Extension())

	l.logger.Debug("ImageLoader", "loading image", map[string]interface{}{
		"path":      originalURI.Path(),
		"extension": uriExtension,
	})

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	imageData, err := l.LoadFromBytes(data, uriExtension)
	if err != nil {
		return nil, err
	}

	imageData.SourcePath = originalURI.Path()
	return imageData, nil
}

func (l *imageLoader) LoadFromBytes(data []byte, format string) (*ImageData, error) {
	ctx := l.timingTracker.StartTiming("load_from_bytes")
	defer l.timingTracker.EndTiming(ctx)

	// Decode with standard library for Go image interface
	stdCtx := l.timingTracker.StartTiming("stdlib_decode")
	img, standardLibFormat, err := image.Decode(bytes.NewReader(data))
	l.timingTracker.EndTiming(stdCtx)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	if err := safe.ValidateDimensions(bounds.Dx(), bounds.Dy(), "LoadFromBytes"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	// Decode with OpenCV for Mat operations. IMReadColor always yields
	// 8-bit BGR, which is what the inpainter expects.
	cvCtx := l.timingTracker.StartTiming("opencv_decode")
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	l.timingTracker.EndTiming(cvCtx)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: OpenCV produced an empty mat", ErrUnsupportedImage)
	}

	safeMat, err := safe.NewMatFromMatWithTracker(mat, l.memTracker, "loaded_image")
	mat.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create safe Mat: %w", err)
	}

	actualFormat := l.determineActualFormat(format, standardLibFormat)

	imageData := &ImageData{
		Image:    img,
		Mat:      safeMat,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: safeMat.Channels(),
		Format:   actualFormat,
	}

	l.logger.Info("ImageLoader", "image loaded successfully", map[string]interface{}{
		"width":    imageData.Width,
		"height":   imageData.Height,
		"channels": imageData.Channels,
		"format":   actualFormat,
	})

	return imageData, nil
}

func (l *imageLoader) determineActualFormat(uriExtension, stdLibFormat string) string {
	switch uriExtension {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		if stdLibFormat != "" {
			return stdLibFormat
		}
		return "unknown"
	}
}
