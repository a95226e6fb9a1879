package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/couchcryptid/farm-map-service/internal/domain"
	"github.com/couchcryptid/farm-map-service/internal/observability"
)

// ErrNoCollection is returned while the farm collection has not been loaded.
var ErrNoCollection = errors.New("farm collection not loaded")

// Snapshotter provides the current farm collection.
type Snapshotter interface {
	Snapshot() (domain.Collection, bool)
}

// SelectionTransformer implements Transformer by applying each selection
// event to the current collection snapshot.
type SelectionTransformer struct {
	catalog      Snapshotter
	radiusMeters float64
	metrics      *observability.Metrics
}

// NewTransformer creates a SelectionTransformer highlighting neighbors within
// radiusMeters of the selected farm.
func NewTransformer(catalog Snapshotter, radiusMeters float64, metrics *observability.Metrics) *SelectionTransformer {
	return &SelectionTransformer{
		catalog:      catalog,
		radiusMeters: radiusMeters,
		metrics:      metrics,
	}
}

func (t *SelectionTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	coll, ok := t.catalog.Snapshot()
	if !ok {
		return domain.OutputEvent{}, ErrNoCollection
	}

	ev, err := domain.ParseSelectionEvent(raw)
	if err != nil {
		t.metrics.SelectionErrors.WithLabelValues("kafka").Inc()
		return domain.OutputEvent{}, err
	}

	start := time.Now()
	frame, err := domain.BuildRenderFrame(coll, ev, t.radiusMeters, domain.FrameKey(raw))
	if err != nil {
		t.metrics.SelectionErrors.WithLabelValues("kafka").Inc()
		return domain.OutputEvent{}, err
	}
	t.metrics.ReduceDuration.Observe(time.Since(start).Seconds())
	t.metrics.Selections.WithLabelValues("kafka").Inc()

	return domain.SerializeRenderFrame(frame)
}
