package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		anomaly   bool
		deviation float64
		expected  Category
	}{
		{"normal positive", false, 0.3, CategoryNormal},
		{"normal negative", false, -4.2, CategoryNormal},
		{"normal zero", false, 0, CategoryNormal},
		{"normal huge", false, math.MaxFloat64, CategoryNormal},
		{"anomaly high", true, 1.5, CategoryAnomalyHigh},
		{"anomaly smallest positive", true, math.SmallestNonzeroFloat64, CategoryAnomalyHigh},
		{"anomaly zero is low", true, 0, CategoryAnomalyLow},
		{"anomaly negative zero is low", true, math.Copysign(0, -1), CategoryAnomalyLow},
		{"anomaly low", true, -0.8, CategoryAnomalyLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.anomaly, tt.deviation))
		})
	}
}

func TestCategory_Color(t *testing.T) {
	assert.Equal(t, "#22c55e", CategoryNormal.Color())
	assert.Equal(t, "#3b82f6", CategoryAnomalyHigh.Color())
	assert.Equal(t, "#ef4444", CategoryAnomalyLow.Color())
}

func TestFarm_Category(t *testing.T) {
	farms := FallbackFarms()
	assert.Equal(t, CategoryAnomalyHigh, findFarm(t, farms, "F001").Category())
	assert.Equal(t, CategoryAnomalyLow, findFarm(t, farms, "F002").Category())
	assert.Equal(t, CategoryNormal, findFarm(t, farms, "F003").Category())
}
