package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// BBox is a latitude/longitude rectangle used to focus the map.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// DefaultFocus is the sugarcane belt west of Bangkok shown on first load.
var DefaultFocus = BBox{MinLat: 13.5, MinLon: 100.0, MaxLat: 14.0, MaxLon: 101.0}

// MapCenter is the initial map center (Bangkok).
var MapCenter = Geo{Lat: 13.736717, Lon: 100.523186}

// ParseBBox parses "minLat,minLon,maxLat,maxLon".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("parse bbox %q: want 4 comma-separated values, got %d", s, len(parts))
	}

	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("parse bbox %q: %w", s, err)
		}
		vals[i] = v
	}

	b := BBox{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return BBox{}, fmt.Errorf("parse bbox %q: min exceeds max", s)
	}
	return b, nil
}

// Contains reports whether g lies inside the box, edges included.
func (b BBox) Contains(g Geo) bool {
	return g.Lat >= b.MinLat && g.Lat <= b.MaxLat &&
		g.Lon >= b.MinLon && g.Lon <= b.MaxLon
}

// FilterBBox returns the farms inside b, preserving order.
func FilterBBox(farms []Farm, b BBox) []Farm {
	out := make([]Farm, 0, len(farms))
	for _, f := range farms {
		if b.Contains(f.Geo) {
			out = append(out, f)
		}
	}
	return out
}
