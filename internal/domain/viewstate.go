package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownFarm is returned when a selection names a farm that is not loaded.
var ErrUnknownFarm = errors.New("unknown farm")

// ViewState is the map's transient selection state. The zero value means
// nothing is selected. A new ViewState replaces the previous one on every
// pick event.
type ViewState struct {
	Selected    string  `json:"selected,omitempty"`
	Radius      float64 `json:"radius_meters"`
	Highlighted IDSet   `json:"highlighted"`
}

// HasSelection reports whether a farm is selected.
func (s ViewState) HasSelection() bool { return s.Selected != "" }

// Select returns the state after picking id. The highlighted set holds every
// farm within radiusMeters of the pick, the pick included.
func Select(c Collection, id string, radiusMeters float64) (ViewState, error) {
	ref, ok := c.Lookup(id)
	if !ok {
		return ViewState{}, fmt.Errorf("select %q: %w", id, ErrUnknownFarm)
	}
	return ViewState{
		Selected:    ref.ID,
		Radius:      radiusMeters,
		Highlighted: Neighbors(ref, c.Farms, radiusMeters),
	}, nil
}

// Clear returns the no-selection state.
func Clear() ViewState { return ViewState{} }
