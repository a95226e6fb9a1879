// Package catalog loads the farm collection once per service lifetime and
// hands out the immutable snapshot to request handlers and the selection
// pipeline.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/farm-map-service/internal/domain"
	"github.com/couchcryptid/farm-map-service/internal/observability"
)

// Catalog owns the current collection snapshot.
type Catalog struct {
	source  Source
	strict  bool
	logger  *slog.Logger
	metrics *observability.Metrics

	current atomic.Pointer[domain.Collection]
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithStrict makes Load return fetch and decode errors instead of serving the
// bundled fallback farms.
func WithStrict(strict bool) Option {
	return func(c *Catalog) { c.strict = strict }
}

// New creates a Catalog. A nil source always yields the fallback collection
// (or an error in strict mode).
func New(source Source, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Catalog {
	c := &Catalog{source: source, logger: logger, metrics: metrics}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches and decodes the collection and installs it as the current
// snapshot. On failure the fallback collection is installed instead, unless
// the catalog is strict.
func (c *Catalog) Load(ctx context.Context) error {
	coll, err := c.fetch(ctx)
	if err != nil {
		c.metrics.CatalogLoads.WithLabelValues("error").Inc()
		if c.strict {
			return fmt.Errorf("load farm collection: %w", err)
		}
		c.logger.Warn("farm collection unavailable, serving fallback farms", "error", err)
		c.metrics.CatalogLoads.WithLabelValues("fallback").Inc()
		c.install(domain.FallbackCollection())
		return nil
	}

	c.metrics.CatalogLoads.WithLabelValues("loaded").Inc()
	c.install(coll)
	c.logger.Info("farm collection loaded", "source", coll.Source, "farms", coll.Len())
	return nil
}

func (c *Catalog) fetch(ctx context.Context) (domain.Collection, error) {
	if c.source == nil {
		return domain.Collection{}, errors.New("no farm collection source configured")
	}
	data, err := c.source.Fetch(ctx)
	if err != nil {
		return domain.Collection{}, err
	}
	return domain.DecodeCollection(data, c.source.Name())
}

func (c *Catalog) install(coll domain.Collection) {
	c.current.Store(&coll)
	c.metrics.FarmsLoaded.Set(float64(coll.Len()))
	if coll.Source == domain.SourceFallback {
		c.metrics.CatalogFallback.Set(1)
	} else {
		c.metrics.CatalogFallback.Set(0)
	}
}

// Snapshot returns the current collection and whether one has been loaded.
func (c *Catalog) Snapshot() (domain.Collection, bool) {
	p := c.current.Load()
	if p == nil {
		return domain.Collection{}, false
	}
	return *p, true
}

// CheckReadiness reports an error until a collection has been installed.
func (c *Catalog) CheckReadiness(_ context.Context) error {
	if c.current.Load() == nil {
		return errors.New("farm collection has not been loaded yet")
	}
	return nil
}
