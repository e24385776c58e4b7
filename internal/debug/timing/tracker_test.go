package timing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(event Event) {
	p.events = append(p.events, event)
}

func TestTrackerRecordsDurations(t *testing.T) {
	tracker := NewTracker(nil)

	ctx := tracker.StartTiming("patch_inpaint")
	time.Sleep(time.Millisecond)
	tracker.EndTiming(ctx)

	timings := tracker.GetTimings("patch_inpaint")
	require.Len(t, timings, 1)
	assert.Greater(t, timings[0], time.Duration(0))
}

func TestTrackerAverage(t *testing.T) {
	tracker := NewTracker(nil)

	for i := 0; i < 3; i++ {
		ctx := tracker.StartTiming("patch_inpaint")
		tracker.EndTiming(ctx)
	}

	require.Len(t, tracker.GetTimings("patch_inpaint"), 3)
	assert.GreaterOrEqual(t, tracker.GetAverageTime("patch_inpaint"), time.Duration(0))
	assert.Zero(t, tracker.GetAverageTime("unknown_operation"))
}

func TestTrackerPublishesLifecycleEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	tracker := NewTracker(publisher)

	ctx := tracker.StartTiming("image_load")
	tracker.EndTiming(ctx)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, "timing_started", publisher.events[0].Type)
	assert.Equal(t, "timing_completed", publisher.events[1].Type)
	assert.Equal(t, "image_load", publisher.events[1].Data["operation"])
}

func TestTrackerDisabled(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.SetEnabled(false)

	ctx := tracker.StartTiming("patch_inpaint")
	assert.Equal(t, context.Background(), ctx)

	tracker.EndTiming(ctx)
	assert.Empty(t, tracker.GetTimings("patch_inpaint"))
}

func TestTrackerEndWithForeignContext(t *testing.T) {
	tracker := NewTracker(nil)

	// A context without timing info must be ignored.
	tracker.EndTiming(context.Background())
	assert.Empty(t, tracker.GetAllTimings())
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.EndTiming(tracker.StartTiming("a"))
	tracker.EndTiming(tracker.StartTiming("b"))

	tracker.Reset("a")
	assert.Empty(t, tracker.GetTimings("a"))
	assert.Len(t, tracker.GetTimings("b"), 1)

	tracker.Reset("")
	assert.Empty(t, tracker.GetAllTimings())
}
