package domain

// Category is the three-way status of a farm marker.
type Category string

const (
	CategoryNormal      Category = "NORMAL"
	CategoryAnomalyHigh Category = "ANOMALY_HIGH"
	CategoryAnomalyLow  Category = "ANOMALY_LOW"
)

// Natural marker colors per category.
const (
	colorNormal      = "#22c55e"
	colorAnomalyHigh = "#3b82f6"
	colorAnomalyLow  = "#ef4444"
)

// Classify maps an anomaly flag and signed deviation to a category.
// Zero deviation on an anomalous farm counts as low.
func Classify(anomaly bool, deviation float64) Category {
	switch {
	case !anomaly:
		return CategoryNormal
	case deviation > 0:
		return CategoryAnomalyHigh
	default:
		return CategoryAnomalyLow
	}
}

// Color returns the marker fill color for the category.
func (c Category) Color() string {
	switch c {
	case CategoryAnomalyHigh:
		return colorAnomalyHigh
	case CategoryAnomalyLow:
		return colorAnomalyLow
	default:
		return colorNormal
	}
}

// Category classifies the farm from its own flag and deviation.
func (f Farm) Category() Category {
	return Classify(f.Anomaly, f.Deviation)
}
