package pipeline

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
)

type imageSaver struct {
	fileTracker   FileTracker
	logger        Logger
	timingTracker TimingTracker
}

func (s *imageSaver) SaveToWriter(writer io.Writer, imageData *ImageData, format string) error {
	if imageData == nil || imageData.Image == nil {
		return fmt.Errorf("%w: nothing to save", ErrNoImage)
	}

	ctx := s.timingTracker.StartTiming("save_to_writer")
	defer s.timingTracker.EndTiming(ctx)

	saveFormat := format
	if saveFormat == "" {
		if uriWriter, ok := writer.(fyne.URIWriteCloser); ok {
			saveFormat = formatFromExtension(uriWriter.URI().Extension())
		}
		if saveFormat == "" {
			saveFormat = imageData.Format
		}
	}

	s.logger.Debug("ImageSaver", "saving image", map[string]interface{}{
		"format": saveFormat,
		"width":  imageData.Width,
		"height": imageData.Height,
	})

	var err error
	switch saveFormat {
	case "jpeg":
		err = jpeg.Encode(writer, imageData.Image, &jpeg.Options{Quality: 95})
	case "png":
		err = png.Encode(writer, imageData.Image)
	case "", "unknown":
		err = png.Encode(writer, imageData.Image)
	default:
		s.logger.Warning("ImageSaver", "format not supported for writing, using PNG", map[string]interface{}{
			"requested_format": saveFormat,
		})
		err = png.Encode(writer, imageData.Image)
	}

	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": saveFormat,
		})
		return fmt.Errorf("failed to encode image: %w", err)
	}

	s.logger.Info("ImageSaver", "image saved", map[string]interface{}{
		"format": saveFormat,
	})

	return nil
}

func (s *imageSaver) SaveToPath(path string, imageData *ImageData) error {
	if imageData == nil || imageData.Image == nil {
		return fmt.Errorf("%w: nothing to save", ErrNoImage)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	s.fileTracker.TrackOpen(path, file.Fd())
	defer func() {
		s.fileTracker.TrackClose(path, file.Fd())
		file.Close()
	}()

	format := formatFromExtension(filepath.Ext(path))
	if format == "" {
		format = "png"
	}

	return s.SaveToWriter(file, imageData, format)
}

// formatFromExtension maps a file extension onto an encoder name.
// Unwritable formats map to empty so callers fall back to PNG.
func formatFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	default:
		return ""
	}
}
