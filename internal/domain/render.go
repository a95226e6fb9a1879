package domain

// Emphasis tells the map how prominently to draw a marker.
type Emphasis string

const (
	EmphasisNone     Emphasis = "none"
	EmphasisSelected Emphasis = "selected"
	EmphasisNeighbor Emphasis = "neighbor"
	EmphasisDimmed   Emphasis = "dimmed"
)

// DimmedOpacity is applied to farms outside the proximity set of a selection.
const DimmedOpacity = 0.4

const (
	outlineNeutral  = "#ffffff"
	outlineSelected = "#facc15"
	outlineNeighbor = "#0ea5e9"
	outlineMuted    = "#6b7280"
	fillDimmed      = "#9ca3af"
)

// RenderDescriptor holds the visual attributes of one farm marker.
type RenderDescriptor struct {
	FarmID       string   `json:"farm_id"`
	Category     Category `json:"category"`
	Emphasis     Emphasis `json:"emphasis"`
	FillColor    string   `json:"fill_color"`
	OutlineColor string   `json:"outline_color"`
	Opacity      float64  `json:"opacity"`
}

// Reduce derives one descriptor per farm, in input order, from the view
// state. It keeps no state between calls.
func Reduce(farms []Farm, state ViewState) []RenderDescriptor {
	out := make([]RenderDescriptor, len(farms))
	for i := range farms {
		out[i] = describe(farms[i], state)
	}
	return out
}

func describe(f Farm, state ViewState) RenderDescriptor {
	category := f.Category()
	d := RenderDescriptor{
		FarmID:       f.ID,
		Category:     category,
		Emphasis:     EmphasisNone,
		FillColor:    category.Color(),
		OutlineColor: outlineNeutral,
		Opacity:      1,
	}

	switch {
	case !state.HasSelection():
		return d
	case f.ID == state.Selected:
		d.Emphasis = EmphasisSelected
		d.OutlineColor = outlineSelected
	case state.Highlighted.Has(f.ID):
		d.Emphasis = EmphasisNeighbor
		d.OutlineColor = outlineNeighbor
	default:
		d.Emphasis = EmphasisDimmed
		d.FillColor = fillDimmed
		d.OutlineColor = outlineMuted
		d.Opacity = DimmedOpacity
	}
	return d
}
