package pipeline_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/farm-map-service/internal/domain"
	"github.com/couchcryptid/farm-map-service/internal/observability"
	"github.com/couchcryptid/farm-map-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCatalog struct {
	coll   domain.Collection
	loaded bool
}

func (s staticCatalog) Snapshot() (domain.Collection, bool) { return s.coll, s.loaded }

func fallbackCatalog() staticCatalog {
	return staticCatalog{coll: domain.FallbackCollection(), loaded: true}
}

func TestSelectionTransformer_Transform(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	tfm := pipeline.NewTransformer(fallbackCatalog(), domain.DefaultRadiusMeters, metrics)

	raw := selectionMessage("s-1", "F001")
	raw.Partition = 2
	raw.Offset = 41

	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("s-1"), out.Key)
	assert.Equal(t, "F001", out.Headers["selected"])
	assert.Equal(t, "2026-01-05T09:30:00Z", out.Headers["rendered_at"])

	var frame domain.RenderFrame
	require.NoError(t, json.Unmarshal(out.Value, &frame))
	assert.Equal(t, out.Headers["frame_id"], frame.FrameID)
	assert.Equal(t, []string{"F001", "F003", "F004"}, frame.State.Highlighted.IDs())
	assert.Len(t, frame.Descriptors, 6)

	for _, d := range frame.Descriptors {
		switch d.FarmID {
		case "F001":
			assert.Equal(t, domain.EmphasisSelected, d.Emphasis)
		case "F003", "F004":
			assert.Equal(t, domain.EmphasisNeighbor, d.Emphasis)
		default:
			assert.Equal(t, domain.EmphasisDimmed, d.Emphasis)
			assert.InDelta(t, domain.DimmedOpacity, d.Opacity, 0)
		}
	}

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Selections.WithLabelValues("kafka")), 0)
}

func TestSelectionTransformer_Transform_Deterministic(t *testing.T) {
	tfm := pipeline.NewTransformer(fallbackCatalog(), domain.DefaultRadiusMeters, observability.NewMetricsForTesting())
	raw := selectionMessage("s-1", "F005")

	a, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	b, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, a.Headers["frame_id"], b.Headers["frame_id"])
}

func TestSelectionTransformer_Transform_Clear(t *testing.T) {
	tfm := pipeline.NewTransformer(fallbackCatalog(), domain.DefaultRadiusMeters, observability.NewMetricsForTesting())

	out, err := tfm.Transform(context.Background(), domain.RawEvent{Key: []byte("s-9"), Value: []byte(`{}`)})
	require.NoError(t, err)

	var frame domain.RenderFrame
	require.NoError(t, json.Unmarshal(out.Value, &frame))
	assert.Equal(t, "s-9", frame.SessionID)
	assert.False(t, frame.State.HasSelection())
	for _, d := range frame.Descriptors {
		assert.Equal(t, domain.EmphasisNone, d.Emphasis)
		assert.InDelta(t, 1.0, d.Opacity, 0)
	}
}

func TestSelectionTransformer_Transform_Errors(t *testing.T) {
	tests := []struct {
		name    string
		catalog staticCatalog
		raw     domain.RawEvent
		wantErr error
	}{
		{
			name:    "not loaded",
			catalog: staticCatalog{},
			raw:     selectionMessage("s", "F001"),
			wantErr: pipeline.ErrNoCollection,
		},
		{
			name:    "unknown farm",
			catalog: fallbackCatalog(),
			raw:     selectionMessage("s", "F404"),
			wantErr: domain.ErrUnknownFarm,
		},
		{
			name:    "malformed payload",
			catalog: fallbackCatalog(),
			raw:     domain.RawEvent{Key: []byte("s"), Value: []byte("not json")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tfm := pipeline.NewTransformer(tt.catalog, domain.DefaultRadiusMeters, observability.NewMetricsForTesting())
			_, err := tfm.Transform(context.Background(), tt.raw)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
