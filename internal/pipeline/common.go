package pipeline

import (
	"context"
)

// Common interfaces used across pipeline components. Declared locally
// so the pipeline depends on behavior, not on the debug package's
// concrete trackers.
type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Info(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

type TimingTracker interface {
	StartTiming(operation string) context.Context
	EndTiming(ctx context.Context)
}

type FileTracker interface {
	TrackOpen(path string, handle uintptr)
	TrackClose(path string, handle uintptr)
}
