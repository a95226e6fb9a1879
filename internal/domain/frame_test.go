package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelectionEvent(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("full payload", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{"session_id":"s1","farm_id":" F001 ","at":"2025-03-01T09:00:00Z"}`), Timestamp: ts}
		ev, err := ParseSelectionEvent(raw)
		require.NoError(t, err)
		assert.Equal(t, "s1", ev.SessionID)
		assert.Equal(t, "F001", ev.FarmID)
		assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), ev.At)
	})

	t.Run("session from key and time from message", func(t *testing.T) {
		raw := RawEvent{Key: []byte("s2"), Value: []byte(`{"farm_id":"F002"}`), Timestamp: ts}
		ev, err := ParseSelectionEvent(raw)
		require.NoError(t, err)
		assert.Equal(t, "s2", ev.SessionID)
		assert.Equal(t, ts, ev.At)
	})

	t.Run("clear selection", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{"session_id":"s3"}`)}
		ev, err := ParseSelectionEvent(raw)
		require.NoError(t, err)
		assert.Empty(t, ev.FarmID)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := ParseSelectionEvent(RawEvent{Value: []byte(`{"farm_id":"F001"}`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session_id")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseSelectionEvent(RawEvent{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse selection event")
	})
}

func TestBuildRenderFrame(t *testing.T) {
	renderedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(renderedAt))
	t.Cleanup(func() { SetClock(nil) })

	c := FallbackCollection()
	ev := SelectionEvent{SessionID: "s1", FarmID: "F001"}

	frame, err := BuildRenderFrame(c, ev, DefaultRadiusMeters, "farm-selections/0/7")
	require.NoError(t, err)

	assert.Equal(t, "s1", frame.SessionID)
	assert.Equal(t, "F001", frame.State.Selected)
	assert.Equal(t, []string{"F001", "F003", "F004"}, frame.State.Highlighted.IDs())
	assert.Len(t, frame.Descriptors, c.Len())
	assert.Equal(t, SourceFallback, frame.Source)
	assert.Equal(t, renderedAt, frame.RenderedAt)
	assert.NotEmpty(t, frame.FrameID)

	again, err := BuildRenderFrame(c, ev, DefaultRadiusMeters, "farm-selections/0/7")
	require.NoError(t, err)
	assert.Equal(t, frame.FrameID, again.FrameID, "replays keep the frame ID")

	other, err := BuildRenderFrame(c, ev, DefaultRadiusMeters, "farm-selections/0/8")
	require.NoError(t, err)
	assert.NotEqual(t, frame.FrameID, other.FrameID)
}

func TestBuildRenderFrame_Clear(t *testing.T) {
	c := FallbackCollection()
	frame, err := BuildRenderFrame(c, SelectionEvent{SessionID: "s1"}, DefaultRadiusMeters, "k")
	require.NoError(t, err)

	assert.False(t, frame.State.HasSelection())
	for _, d := range frame.Descriptors {
		assert.Equal(t, EmphasisNone, d.Emphasis)
	}
}

func TestBuildRenderFrame_UnknownFarm(t *testing.T) {
	_, err := BuildRenderFrame(FallbackCollection(), SelectionEvent{SessionID: "s1", FarmID: "nope"}, DefaultRadiusMeters, "k")
	assert.True(t, errors.Is(err, ErrUnknownFarm))
}

func TestSerializeRenderFrame(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	frame := RenderFrame{
		FrameID:    "frame-1",
		SessionID:  "s1",
		State:      ViewState{Selected: "F001", Highlighted: NewIDSet("F001")},
		Source:     SourceFallback,
		RenderedAt: now,
	}

	out, err := SerializeRenderFrame(frame)
	require.NoError(t, err)

	assert.Equal(t, []byte("s1"), out.Key)
	assert.Equal(t, "frame-1", out.Headers["frame_id"])
	assert.Equal(t, "F001", out.Headers["selected"])
	assert.Equal(t, now.Format(time.RFC3339), out.Headers["rendered_at"])

	var decoded RenderFrame
	require.NoError(t, json.Unmarshal(out.Value, &decoded))
	assert.Equal(t, []string{"F001"}, decoded.State.Highlighted.IDs())
}

func TestFrameKey(t *testing.T) {
	assert.Equal(t, "farm-selections/2/42", FrameKey(RawEvent{Topic: "farm-selections", Partition: 2, Offset: 42}))
}
