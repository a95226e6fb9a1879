package domain

import (
	"context"
	"log/slog"
)

// Geo source labels recorded on a FarmDetail.
const (
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// FarmDetail is the popup payload for a single farm.
type FarmDetail struct {
	Farm     Farm     `json:"farm"`
	Category Category `json:"category"`
	Summary  string   `json:"summary"`

	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"`
}

// DescribeFarm builds the popup payload, enriching it with a reverse-geocoded
// place when a geocoder is available. Geocoding failures degrade to the bare
// record with GeoSource "failed".
func DescribeFarm(ctx context.Context, farm Farm, summaryRunes int, geocoder Geocoder, logger *slog.Logger) FarmDetail {
	detail := FarmDetail{
		Farm:     farm,
		Category: farm.Category(),
		Summary:  farm.Summary(summaryRunes),
	}
	if geocoder == nil {
		return detail
	}

	result, err := geocoder.ReverseGeocode(ctx, farm.Geo.Lat, farm.Geo.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"farm_id", farm.ID,
			"lat", farm.Geo.Lat,
			"lon", farm.Geo.Lon,
			"error", err,
		)
		detail.GeoSource = GeoSourceFailed
		return detail
	}
	if result.FormattedAddress == "" {
		detail.GeoSource = GeoSourceOriginal
		return detail
	}

	detail.FormattedAddress = result.FormattedAddress
	detail.PlaceName = result.PlaceName
	detail.GeoConfidence = result.Confidence
	detail.GeoSource = GeoSourceReverse
	return detail
}
