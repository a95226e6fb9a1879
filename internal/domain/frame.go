package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// frameNamespace seeds deterministic frame IDs so a replayed selection
// message produces the same frame ID.
var frameNamespace = uuid.MustParse("6f1c2e0a-3b8d-4c57-9a61-0d2f4e8b7c13")

// ParseSelectionEvent decodes a selection message. The session falls back to
// the message key, and the event time to the message timestamp.
func ParseSelectionEvent(raw RawEvent) (SelectionEvent, error) {
	var ev SelectionEvent
	if err := json.Unmarshal(raw.Value, &ev); err != nil {
		return SelectionEvent{}, fmt.Errorf("parse selection event: %w", err)
	}

	ev.SessionID = strings.TrimSpace(ev.SessionID)
	ev.FarmID = strings.TrimSpace(ev.FarmID)
	if ev.SessionID == "" {
		ev.SessionID = string(raw.Key)
	}
	if ev.SessionID == "" {
		return SelectionEvent{}, errors.New("parse selection event: missing session_id")
	}
	if ev.At.IsZero() {
		ev.At = raw.Timestamp
	}
	return ev, nil
}

// BuildRenderFrame applies a selection event to the collection and reduces
// the resulting view state into descriptors.
func BuildRenderFrame(c Collection, ev SelectionEvent, radiusMeters float64, frameKey string) (RenderFrame, error) {
	state := Clear()
	if ev.FarmID != "" {
		var err error
		state, err = Select(c, ev.FarmID, radiusMeters)
		if err != nil {
			return RenderFrame{}, err
		}
	}

	return RenderFrame{
		FrameID:     frameID(ev, frameKey),
		SessionID:   ev.SessionID,
		State:       state,
		Descriptors: Reduce(c.Farms, state),
		Source:      c.Source,
		RenderedAt:  clock.Now(),
	}, nil
}

// frameID derives a stable identifier from the session, the selection and the
// position of the source message.
func frameID(ev SelectionEvent, frameKey string) string {
	name := ev.SessionID + "|" + ev.FarmID + "|" + frameKey
	return uuid.NewSHA1(frameNamespace, []byte(name)).String()
}

// FrameKey identifies a source message by topic, partition and offset.
func FrameKey(raw RawEvent) string {
	return raw.Topic + "/" + strconv.Itoa(raw.Partition) + "/" + strconv.FormatInt(raw.Offset, 10)
}

// SerializeRenderFrame marshals a frame into an output event keyed by session,
// so the sink topic compacts to the newest frame per session.
func SerializeRenderFrame(frame RenderFrame) (OutputEvent, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize render frame: %w", err)
	}
	return OutputEvent{
		Key:   []byte(frame.SessionID),
		Value: data,
		Headers: map[string]string{
			"frame_id":    frame.FrameID,
			"selected":    frame.State.Selected,
			"rendered_at": frame.RenderedAt.Format(time.RFC3339),
		},
	}, nil
}
