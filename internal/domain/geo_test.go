package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bangkok   = Geo{Lat: 13.7563, Lon: 100.5018}
	minBuri   = Geo{Lat: 13.7650, Lon: 100.6477}
	suphanBur = Geo{Lat: 14.4745, Lon: 100.1222}
)

func TestDistance_CoincidentPointsAreZero(t *testing.T) {
	for _, p := range []Geo{bangkok, minBuri, {Lat: -89.9, Lon: 179.9}, {}} {
		assert.Zero(t, Distance(p, p))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Geo{
		{bangkok, minBuri},
		{bangkok, suphanBur},
		{{Lat: -33.86, Lon: 151.21}, {Lat: 51.5, Lon: -0.12}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistance_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Geo
		expected float64
		delta    float64
	}{
		{"bangkok to min buri", bangkok, minBuri, 15787.36, 1},
		{"one degree of longitude at equator", Geo{}, Geo{Lon: 1}, 111194.93, 1},
		{"short east-west hop", bangkok, Geo{Lat: 13.7563, Lon: 100.5318}, 3240.16, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.a, tt.b), tt.delta)
		})
	}
}

func TestDistance_JitterIsBounded(t *testing.T) {
	jittered := Geo{Lat: bangkok.Lat + 1e-6, Lon: bangkok.Lon + 1e-6}

	assert.Less(t, Distance(bangkok, jittered), 0.2)
	assert.InDelta(t, Distance(bangkok, minBuri), Distance(jittered, minBuri), 0.2)
}

func TestDistance_OutsideDefaultRadius(t *testing.T) {
	assert.Greater(t, Distance(bangkok, minBuri), DefaultRadiusMeters)
}

func TestGeo_Point(t *testing.T) {
	p := bangkok.Point()
	require.NotNil(t, p)

	assert.Equal(t, 4326, p.SRID())
	assert.Equal(t, []float64{100.5018, 13.7563}, p.FlatCoords())
}

func TestGeo_ValidCoordinates(t *testing.T) {
	assert.True(t, bangkok.ValidCoordinates())
	assert.True(t, Geo{Lat: 90, Lon: -180}.ValidCoordinates())
	assert.False(t, Geo{Lat: 90.1}.ValidCoordinates())
	assert.False(t, Geo{Lon: 180.5}.ValidCoordinates())
}
