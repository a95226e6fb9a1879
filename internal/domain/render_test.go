package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_NoSelection(t *testing.T) {
	farms := FallbackFarms()
	descriptors := Reduce(farms, Clear())

	require.Len(t, descriptors, len(farms))
	for i, d := range descriptors {
		assert.Equal(t, farms[i].ID, d.FarmID, "input order preserved")
		assert.Equal(t, EmphasisNone, d.Emphasis)
		assert.Equal(t, d.Category.Color(), d.FillColor)
		assert.Equal(t, outlineNeutral, d.OutlineColor)
		assert.InDelta(t, 1.0, d.Opacity, 0)
	}
}

func TestReduce_WithSelection(t *testing.T) {
	c := FallbackCollection()
	state, err := Select(c, "F001", DefaultRadiusMeters)
	require.NoError(t, err)

	byID := map[string]RenderDescriptor{}
	for _, d := range Reduce(c.Farms, state) {
		byID[d.FarmID] = d
	}

	selected := byID["F001"]
	assert.Equal(t, EmphasisSelected, selected.Emphasis)
	assert.Equal(t, outlineSelected, selected.OutlineColor)
	assert.Equal(t, CategoryAnomalyHigh.Color(), selected.FillColor)
	assert.InDelta(t, 1.0, selected.Opacity, 0)

	for _, id := range []string{"F003", "F004"} {
		n := byID[id]
		assert.Equal(t, EmphasisNeighbor, n.Emphasis, id)
		assert.Equal(t, outlineNeighbor, n.OutlineColor, id)
		assert.Equal(t, CategoryNormal.Color(), n.FillColor, id)
		assert.InDelta(t, 1.0, n.Opacity, 0, id)
	}

	for _, id := range []string{"F002", "F005", "F006"} {
		d := byID[id]
		assert.Equal(t, EmphasisDimmed, d.Emphasis, id)
		assert.Equal(t, fillDimmed, d.FillColor, id)
		assert.Equal(t, outlineMuted, d.OutlineColor, id)
		assert.InDelta(t, DimmedOpacity, d.Opacity, 0, id)
	}
	// Category survives dimming so the legend can still count it.
	assert.Equal(t, CategoryAnomalyLow, byID["F002"].Category)
}

func TestReduce_SelectedRegardlessOfCategory(t *testing.T) {
	c := FallbackCollection()
	state, err := Select(c, "F002", DefaultRadiusMeters)
	require.NoError(t, err)

	descriptors := Reduce(c.Farms, state)
	dimmed := 0
	for _, d := range descriptors {
		if d.FarmID == "F002" {
			assert.Equal(t, EmphasisSelected, d.Emphasis)
			assert.Equal(t, CategoryAnomalyLow.Color(), d.FillColor)
			continue
		}
		assert.Equal(t, EmphasisDimmed, d.Emphasis)
		dimmed++
	}
	assert.Equal(t, 1, state.Highlighted.Len(), "isolated farm highlights only itself")
	assert.Equal(t, len(c.Farms)-1, dimmed)
}

func TestReduce_Idempotent(t *testing.T) {
	c := FallbackCollection()
	state, err := Select(c, "F005", DefaultRadiusMeters)
	require.NoError(t, err)

	first, err := json.Marshal(Reduce(c.Farms, state))
	require.NoError(t, err)
	second, err := json.Marshal(Reduce(c.Farms, state))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReduce_LastSelectionWins(t *testing.T) {
	c := FallbackCollection()
	s1, err := Select(c, "F001", DefaultRadiusMeters)
	require.NoError(t, err)
	s2, err := Select(c, "F005", DefaultRadiusMeters)
	require.NoError(t, err)

	_ = Reduce(c.Farms, s1)
	got := Reduce(c.Farms, s2)
	fresh := Reduce(c.Farms, s2)

	if diff := cmp.Diff(fresh, got); diff != "" {
		t.Fatalf("reducer carried state between calls (-want +got):\n%s", diff)
	}
}

func TestReduce_EmptyCollection(t *testing.T) {
	assert.Empty(t, Reduce(nil, Clear()))
}

func TestSelect_UnknownFarm(t *testing.T) {
	_, err := Select(FallbackCollection(), "nope", DefaultRadiusMeters)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFarm))
}

func TestSelect_RecordsRadius(t *testing.T) {
	state, err := Select(FallbackCollection(), "F001", 1000)
	require.NoError(t, err)

	assert.True(t, state.HasSelection())
	assert.InDelta(t, 1000.0, state.Radius, 0)
	assert.Equal(t, []string{"F001"}, state.Highlighted.IDs())
	assert.False(t, Clear().HasSelection())
}
