package domain

import (
	"encoding/json"
	"sort"
)

// DefaultRadiusMeters is the highlight radius used when none is configured.
const DefaultRadiusMeters = 5000.0

// IDSet is an immutable set of farm identifiers.
type IDSet struct {
	ids map[string]struct{}
}

// NewIDSet builds a set from the given identifiers.
func NewIDSet(ids ...string) IDSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return IDSet{ids: m}
}

// Has reports whether id is a member.
func (s IDSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of members.
func (s IDSet) Len() int { return len(s.ids) }

// IDs returns the members in ascending order.
func (s IDSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes a JSON array of identifiers.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// Neighbors returns the identifiers of all farms within radiusMeters of ref,
// always including ref itself. Membership is a plain threshold test.
func Neighbors(ref Farm, farms []Farm, radiusMeters float64) IDSet {
	set := NewIDSet(ref.ID)
	for i := range farms {
		if farms[i].ID == ref.ID {
			continue
		}
		if Distance(ref.Geo, farms[i].Geo) <= radiusMeters {
			set.ids[farms[i].ID] = struct{}{}
		}
	}
	return set
}
