//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/farm-map-service/internal/domain"
	"github.com/couchcryptid/farm-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ReverseGeocode_Bangkok(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ReverseGeocode(context.Background(), domain.MapCenter.Lat, domain.MapCenter.Lon)
	require.NoError(t, err)
	assert.NotEmpty(t, result.FormattedAddress)
	assert.Greater(t, result.Confidence, 0.0)
	t.Logf("reverse: %s (%s)", result.FormattedAddress, result.PlaceName)
}

func TestSmoke_ReverseGeocode_FallbackFarms(t *testing.T) {
	c := NewCachedGeocoder(smokeClient(t), 16, observability.NewMetricsForTesting())

	for _, f := range domain.FallbackFarms() {
		result, err := c.ReverseGeocode(context.Background(), f.Geo.Lat, f.Geo.Lon)
		require.NoError(t, err, f.ID)
		t.Logf("%s: %s", f.ID, result.FormattedAddress)
	}
}
