package pipeline

import "errors"

// Sentinel errors callers branch on with errors.Is. Wrapped errors add
// the path, format, or click that triggered them.
var (
	ErrImageNotFound    = errors.New("image file not found")
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
	ErrNoImage          = errors.New("no image loaded")
	ErrNothingToUndo    = errors.New("nothing to undo")
)
