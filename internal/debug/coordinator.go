package debug

import (
	"context"
	"time"

	"blotch-banisher/internal/debug/eventbus"
	"blotch-banisher/internal/debug/filetracker"
	"blotch-banisher/internal/debug/memtracker"
	"blotch-banisher/internal/debug/session"
	"blotch-banisher/internal/debug/timing"
	"blotch-banisher/internal/logger"

	"github.com/rs/zerolog"
)

// EventPatchApplied is published by the pipeline after every successful
// restoration patch. The session recorder subscribes to it.
const EventPatchApplied = "patch_applied"

// eventBusAdapter lifts eventbus.Bus to the package's EventPublisher
// interface.
type eventBusAdapter struct {
	bus *eventbus.Bus
}

func (e *eventBusAdapter) Publish(event Event) {
	e.bus.Publish(eventbus.Event{
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Data:      event.Data,
		Context:   event.Context,
	})
}

func (e *eventBusAdapter) Subscribe(eventType string, handler EventHandler) {
	e.bus.Subscribe(eventType, &handlerAdapter{handler: handler})
}

func (e *eventBusAdapter) Unsubscribe(eventType string, handler EventHandler) {
	e.bus.Unsubscribe(eventType, &handlerAdapter{handler: handler})
}

type handlerAdapter struct {
	handler EventHandler
}

func (h *handlerAdapter) Handle(event eventbus.Event) {
	h.handler.Handle(Event{
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Data:      event.Data,
		Context:   event.Context,
	})
}

func (h *handlerAdapter) GetID() string {
	return h.handler.GetID()
}

// Per-tracker event bus shims. Each tracker package declares its own
// Event type to stay import-cycle free, so each needs a small adapter.

type memTrackerBus struct {
	events EventPublisher
}

func (m *memTrackerBus) Publish(event memtracker.Event) {
	m.events.Publish(Event{Type: event.Type, Timestamp: event.Timestamp, Data: event.Data})
}

type fileTrackerBus struct {
	events EventPublisher
}

func (f *fileTrackerBus) Publish(event filetracker.Event) {
	f.events.Publish(Event{Type: event.Type, Timestamp: event.Timestamp, Data: event.Data})
}

type timingTrackerBus struct {
	events EventPublisher
}

func (t *timingTrackerBus) Publish(event timing.Event) {
	t.events.Publish(Event{Type: event.Type, Timestamp: event.Timestamp, Data: event.Data})
}

// sessionClickHandler feeds patch_applied events into the session
// recorder.
type sessionClickHandler struct {
	recorder *session.Recorder
}

func (s *sessionClickHandler) Handle(event Event) {
	x, okX := event.Data["x"].(int)
	y, okY := event.Data["y"].(int)
	radius, okR := event.Data["radius"].(int)
	method, okM := event.Data["method"].(string)
	if !okX || !okY || !okR || !okM {
		return
	}
	s.recorder.Record(x, y, radius, method)
}

func (s *sessionClickHandler) GetID() string { return "session_recorder" }

type timingTrackerImpl struct {
	tracker *timing.Tracker
}

func (t *timingTrackerImpl) StartTiming(operation string) context.Context {
	return t.tracker.StartTiming(operation)
}

func (t *timingTrackerImpl) EndTiming(ctx context.Context) {
	t.tracker.EndTiming(ctx)
}

func (t *timingTrackerImpl) GetTimings(operation string) []time.Duration {
	return t.tracker.GetTimings(operation)
}

func (t *timingTrackerImpl) GetAverageTime(operation string) time.Duration {
	return t.tracker.GetAverageTime(operation)
}

type memoryTrackerImpl struct {
	tracker *memtracker.Tracker
}

func (m *memoryTrackerImpl) TrackAllocation(ptr uintptr, size int64, tag string) {
	m.tracker.TrackAllocation(ptr, size, tag)
}

func (m *memoryTrackerImpl) TrackDeallocation(ptr uintptr, tag string) {
	m.tracker.TrackDeallocation(ptr, tag)
}

func (m *memoryTrackerImpl) GetAllocations() map[uintptr]AllocationInfo {
	allocations := m.tracker.GetAllocations()
	result := make(map[uintptr]AllocationInfo, len(allocations))
	for ptr, info := range allocations {
		result[ptr] = AllocationInfo{
			Size:        info.Size,
			Tag:         info.Tag,
			AllocatedAt: info.AllocatedAt,
			StackTrace:  info.StackTrace,
		}
	}
	return result
}

func (m *memoryTrackerImpl) GetStats() MemoryStats {
	stats := m.tracker.GetStats()
	return MemoryStats{
		TotalAllocated:   stats.TotalAllocated,
		TotalDeallocated: stats.TotalDeallocated,
		CurrentlyActive:  stats.CurrentlyActive,
		AllocationCount:  stats.AllocationCount,
		LeakCount:        stats.LeakCount,
	}
}

type fileTrackerImpl struct {
	tracker *filetracker.Tracker
}

func (f *fileTrackerImpl) TrackOpen(path string, handle uintptr) {
	f.tracker.TrackOpen(path, handle)
}

func (f *fileTrackerImpl) TrackClose(path string, handle uintptr) {
	f.tracker.TrackClose(path, handle)
}

func (f *fileTrackerImpl) GetOpenFiles() map[string]FileInfo {
	files := f.tracker.GetOpenFiles()
	result := make(map[string]FileInfo, len(files))
	for path, info := range files {
		result[path] = FileInfo{
			Path:       info.Path,
			Handle:     info.Handle,
			OpenedAt:   info.OpenedAt,
			StackTrace: info.StackTrace,
		}
	}
	return result
}

func (f *fileTrackerImpl) DetectLeaks() []FileInfo {
	leaks := f.tracker.DetectLeaks()
	result := make([]FileInfo, len(leaks))
	for i, info := range leaks {
		result[i] = FileInfo{
			Path:       info.Path,
			Handle:     info.Handle,
			OpenedAt:   info.OpenedAt,
			StackTrace: info.StackTrace,
		}
	}
	return result
}

type coordinator struct {
	logger        Logger
	timingTracker TimingTracker
	memoryTracker MemoryTracker
	fileTracker   FileTracker
	recorder      *session.Recorder
	eventBus      *eventBusAdapter
}

// NewCoordinator wires the debug subsystems together: structured
// logger, event bus, trackers, and the session click recorder (which
// subscribes to patch events on the bus).
func NewCoordinator(config Config) Coordinator {
	events := &eventBusAdapter{bus: eventbus.NewBus(config.EventBufferSize)}

	var log Logger
	switch {
	case !config.EnableLogging:
		log = logger.NoOp{}
	case config.UseJSONLogging:
		log = logger.NewJSONLogger(config.LogLevel)
	default:
		log = logger.NewConsoleLogger(config.LogLevel)
	}

	memTracker := memtracker.NewTracker(&memTrackerBus{events: events}, config.EnableStackTraces)
	memTracker.SetEnabled(config.EnableMemoryTracking)

	fileTracker := filetracker.NewTracker(&fileTrackerBus{events: events})
	fileTracker.SetEnabled(config.EnableFileTracking)

	timingTracker := timing.NewTracker(&timingTrackerBus{events: events})
	timingTracker.SetEnabled(config.EnableTimingTracking)

	recorder := session.NewRecorder(config.TrailDir)
	events.Subscribe(EventPatchApplied, &sessionClickHandler{recorder: recorder})

	return &coordinator{
		logger:        log,
		timingTracker: &timingTrackerImpl{tracker: timingTracker},
		memoryTracker: &memoryTrackerImpl{tracker: memTracker},
		fileTracker:   &fileTrackerImpl{tracker: fileTracker},
		recorder:      recorder,
		eventBus:      events,
	}
}

func (dc *coordinator) Logger() Logger {
	return dc.logger
}

func (dc *coordinator) TimingTracker() TimingTracker {
	return dc.timingTracker
}

func (dc *coordinator) MemoryTracker() MemoryTracker {
	return dc.memoryTracker
}

func (dc *coordinator) FileTracker() FileTracker {
	return dc.fileTracker
}

func (dc *coordinator) EventPublisher() EventPublisher {
	return dc.eventBus
}

func (dc *coordinator) SessionRecorder() SessionRecorder {
	return dc.recorder
}

// Shutdown drains the event bus so late patch events still reach the
// session recorder before the trail is written.
func (dc *coordinator) Shutdown() {
	dc.eventBus.bus.Shutdown()
}

type Config struct {
	EnableLogging        bool
	EnableMemoryTracking bool
	EnableFileTracking   bool
	EnableTimingTracking bool
	EnableStackTraces    bool
	UseJSONLogging       bool
	LogLevel             zerolog.Level
	EventBufferSize      int
	TrailDir             string
}

func DefaultConfig() Config {
	return Config{
		EnableLogging:        true,
		EnableMemoryTracking: true,
		EnableFileTracking:   true,
		EnableTimingTracking: true,
		EnableStackTraces:    false,
		UseJSONLogging:       false,
		LogLevel:             zerolog.InfoLevel,
		EventBufferSize:      1000,
		TrailDir:             ".",
	}
}

func ProductionConfig() Config {
	return Config{
		EnableLogging:        true,
		EnableMemoryTracking: false,
		EnableFileTracking:   false,
		EnableTimingTracking: false,
		EnableStackTraces:    false,
		UseJSONLogging:       true,
		LogLevel:             zerolog.ErrorLevel,
		EventBufferSize:      100,
		TrailDir:             ".",
	}
}
