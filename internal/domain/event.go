package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the selection topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SelectionEvent is a map client's pick. An empty FarmID clears the selection.
type SelectionEvent struct {
	SessionID string    `json:"session_id"`
	FarmID    string    `json:"farm_id,omitempty"`
	At        time.Time `json:"at,omitempty"`
}

// RenderFrame is the full set of marker descriptors for one view state.
// Consumers keep only the newest frame per session.
type RenderFrame struct {
	FrameID     string             `json:"frame_id"`
	SessionID   string             `json:"session_id"`
	State       ViewState          `json:"state"`
	Descriptors []RenderDescriptor `json:"descriptors"`
	Source      string             `json:"source"`
	RenderedAt  time.Time          `json:"rendered_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
