package domain

import (
	"math"
	"sort"
)

// Analysis defaults.
const (
	DefaultNeighborCount    = 10
	DefaultAnomalyThreshold = 1.0
)

// YieldRecord is one farm's measured yield before neighborhood analysis.
type YieldRecord struct {
	ID         string
	FarmerName string
	Geo        Geo
	Yield      float64
	Reasoning  string
}

// NearestNeighbors returns the indices of the k farms closest to points[i],
// excluding i itself. Equal distances are ordered by index. Fewer than k
// indices are returned when the input is small.
func NearestNeighbors(points []Geo, i, k int) []int {
	if k <= 0 || i < 0 || i >= len(points) {
		return nil
	}

	type candidate struct {
		index int
		dist  float64
	}
	candidates := make([]candidate, 0, len(points)-1)
	for j := range points {
		if j == i {
			continue
		}
		candidates = append(candidates, candidate{index: j, dist: Distance(points[i], points[j])})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]int, len(candidates))
	for n, c := range candidates {
		out[n] = c.index
	}
	return out
}

// DetectAnomalies compares every farm's yield with the mean yield of its k
// nearest neighbors. Deviation is yield minus that mean; a farm is anomalous
// when the absolute deviation exceeds threshold. A farm without neighbors
// has zero deviation.
func DetectAnomalies(records []YieldRecord, k int, threshold float64) []Farm {
	points := make([]Geo, len(records))
	for i, r := range records {
		points[i] = r.Geo
	}

	farms := make([]Farm, len(records))
	for i, r := range records {
		neighbors := NearestNeighbors(points, i, k)

		deviation := 0.0
		if len(neighbors) > 0 {
			sum := 0.0
			for _, j := range neighbors {
				sum += records[j].Yield
			}
			deviation = r.Yield - sum/float64(len(neighbors))
		}

		farms[i] = Farm{
			ID:              r.ID,
			FarmerName:      r.FarmerName,
			Geo:             r.Geo,
			Deviation:       deviation,
			Anomaly:         math.Abs(deviation) > threshold,
			Reasoning:       CleanReasoning(r.Reasoning),
			NeighborIndices: neighbors,
		}
	}
	return farms
}
