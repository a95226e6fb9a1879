package domain

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distances.
const EarthRadiusMeters = 6_371_000.0

// sridWGS84 is the EPSG code attached to exported geometries.
const sridWGS84 = 4326

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the coordinate as a go-geom point. Coordinates are stored
// in lon,lat order as GeoJSON requires.
func (g Geo) Point() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{g.Lon, g.Lat}).SetSRID(sridWGS84)
}

// Distance returns the great-circle distance between a and b in meters.
// Coordinates are not range-checked; coincident points yield exactly 0.
func Distance(a, b Geo) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ValidCoordinates reports whether g lies within the WGS-84 ranges.
func (g Geo) ValidCoordinates() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}
