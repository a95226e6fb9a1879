package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultReasoning replaces the "nan" placeholder the analysis writes for
// farms without a generated narrative.
const DefaultReasoning = "ฟาร์มรอบข้างเคียงมีการใส่ปุ๋ยแบบสูตรพิเศษ 87 แล้วมี Yield ที่สูงขึ้น สนใจอยากจะลองทำตามดูไหม"

// ErrEmptyCollection is returned when a collection document holds no farms.
var ErrEmptyCollection = errors.New("farm collection is empty")

// Farm is one geolocated record of the map collection.
type Farm struct {
	ID         string
	FarmerName string
	Geo        Geo
	// Deviation is the signed difference from the neighborhood baseline.
	Deviation float64
	Anomaly   bool
	Reasoning string
	// NeighborIndices are the analysis pipeline's nearest-neighbor row
	// indices, passed through for display only.
	NeighborIndices []int
}

// farmRecord is the JSON wire shape. Required fields are pointers so a
// missing key can be told apart from a zero value.
type farmRecord struct {
	FarmID          *string  `json:"farm_id"`
	FarmerName      string   `json:"farmer_name"`
	Deviation       float64  `json:"neighborhood_avg_yield_difference"`
	Anomaly         bool     `json:"is_anomaly"`
	Reasoning       string   `json:"llm_reasoning"`
	NeighborIndices []int    `json:"nearest_neighbors_indices,omitempty"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// MarshalJSON encodes the farm in the collection wire format.
func (f Farm) MarshalJSON() ([]byte, error) {
	id, lat, lon := f.ID, f.Geo.Lat, f.Geo.Lon
	return json.Marshal(farmRecord{
		FarmID:          &id,
		FarmerName:      f.FarmerName,
		Deviation:       f.Deviation,
		Anomaly:         f.Anomaly,
		Reasoning:       f.Reasoning,
		NeighborIndices: f.NeighborIndices,
		Latitude:        &lat,
		Longitude:       &lon,
	})
}

// ValidationError describes a record rejected at load time.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("farm record %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Collection is an immutable snapshot of the farms loaded for a session.
type Collection struct {
	Farms    []Farm
	Source   string
	LoadedAt time.Time

	index map[string]int
}

// NewCollection validates farms and builds an indexed snapshot stamped with
// the current clock time.
func NewCollection(farms []Farm, source string) (Collection, error) {
	if len(farms) == 0 {
		return Collection{}, ErrEmptyCollection
	}

	index := make(map[string]int, len(farms))
	for i := range farms {
		f := &farms[i]
		if strings.TrimSpace(f.ID) == "" {
			return Collection{}, &ValidationError{Index: i, Field: "farm_id", Reason: "missing"}
		}
		if _, dup := index[f.ID]; dup {
			return Collection{}, &ValidationError{Index: i, Field: "farm_id", Reason: fmt.Sprintf("duplicate id %q", f.ID)}
		}
		if !(f.Geo.Lat >= -90 && f.Geo.Lat <= 90) {
			return Collection{}, &ValidationError{Index: i, Field: "latitude", Reason: fmt.Sprintf("%g out of range", f.Geo.Lat)}
		}
		if !(f.Geo.Lon >= -180 && f.Geo.Lon <= 180) {
			return Collection{}, &ValidationError{Index: i, Field: "longitude", Reason: fmt.Sprintf("%g out of range", f.Geo.Lon)}
		}
		if math.IsNaN(f.Deviation) || math.IsInf(f.Deviation, 0) {
			return Collection{}, &ValidationError{Index: i, Field: "neighborhood_avg_yield_difference", Reason: fmt.Sprintf("%g is not finite", f.Deviation)}
		}
		index[f.ID] = i
	}

	return Collection{
		Farms:    farms,
		Source:   source,
		LoadedAt: clock.Now(),
		index:    index,
	}, nil
}

// DecodeCollection parses a JSON array of farm records. Any record missing
// an identifier or coordinate fails the whole document.
func DecodeCollection(data []byte, source string) (Collection, error) {
	var records []farmRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return Collection{}, fmt.Errorf("decode farm collection: %w", err)
	}

	farms := make([]Farm, 0, len(records))
	for i, rec := range records {
		switch {
		case rec.FarmID == nil:
			return Collection{}, &ValidationError{Index: i, Field: "farm_id", Reason: "missing"}
		case rec.Latitude == nil:
			return Collection{}, &ValidationError{Index: i, Field: "latitude", Reason: "missing"}
		case rec.Longitude == nil:
			return Collection{}, &ValidationError{Index: i, Field: "longitude", Reason: "missing"}
		}
		farms = append(farms, Farm{
			ID:              strings.TrimSpace(*rec.FarmID),
			FarmerName:      rec.FarmerName,
			Geo:             Geo{Lat: *rec.Latitude, Lon: *rec.Longitude},
			Deviation:       rec.Deviation,
			Anomaly:         rec.Anomaly,
			Reasoning:       CleanReasoning(rec.Reasoning),
			NeighborIndices: rec.NeighborIndices,
		})
	}

	return NewCollection(farms, source)
}

// CleanReasoning substitutes DefaultReasoning for the analysis "nan" placeholder.
func CleanReasoning(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return DefaultReasoning
	}
	return s
}

// Lookup returns the farm with the given identifier.
func (c Collection) Lookup(id string) (Farm, bool) {
	if c.index != nil {
		i, ok := c.index[id]
		if !ok {
			return Farm{}, false
		}
		return c.Farms[i], true
	}
	for _, f := range c.Farms {
		if f.ID == id {
			return f, true
		}
	}
	return Farm{}, false
}

// Len returns the number of farms in the snapshot.
func (c Collection) Len() int { return len(c.Farms) }

// Summary returns the narrative cut to at most maxRunes runes, followed by
// an ellipsis when truncated. Cuts fall on normalization boundaries and never
// separate a combining mark from its base character.
func (f Farm) Summary(maxRunes int) string {
	text := norm.NFC.String(strings.TrimSpace(f.Reasoning))
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	var (
		b       strings.Builder
		cluster []byte
		count   int
		it      norm.Iter
	)
	it.InitString(norm.NFC, text)
	for !it.Done() {
		seg := it.Next()
		r, _ := utf8.DecodeRune(seg)
		if len(cluster) > 0 && !isMark(r) {
			n := utf8.RuneCount(cluster)
			if count+n > maxRunes {
				return strings.TrimSpace(b.String()) + "…"
			}
			b.Write(cluster)
			count += n
			cluster = cluster[:0]
		}
		cluster = append(cluster, seg...)
	}
	if n := utf8.RuneCount(cluster); count+n <= maxRunes {
		b.Write(cluster)
	}
	return strings.TrimSpace(b.String()) + "…"
}

func isMark(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me)
}
