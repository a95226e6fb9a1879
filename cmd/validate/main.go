// Command validate checks a farm collection file before it is published to
// the map: schema and identifiers, coordinate sanity, anomaly flag
// consistency, and symmetry of the proximity sets at the map radius.
//
// Usage:
//
//	go run ./cmd/validate -in data/farms.json -radius 5000
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/farm-map-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	in := flag.String("in", "", "path to the farm collection JSON")
	radius := flag.Float64("radius", domain.DefaultRadiusMeters, "proximity radius in meters")
	threshold := flag.Float64("threshold", domain.DefaultAnomalyThreshold, "absolute deviation above which a farm should be flagged anomalous")
	flag.Parse()

	if *in == "" || *radius <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*in, *radius, *threshold); code != 0 {
		os.Exit(code)
	}
}

func run(path string, radius, threshold float64) int {
	fmt.Println("=== Farm Collection Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read collection: %v\n", err)
		return 1
	}

	coll, err := domain.DecodeCollection(data, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRecords(coll),
		validateCoordinates(coll),
		validateAnomalyFlags(coll, threshold),
		validateProximity(coll, radius),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	printCategories(coll)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nAll phases passed.")
	return 0
}

func validateRecords(c domain.Collection) *phase {
	p := &phase{name: "Phase 1: Records"}
	for i, f := range c.Farms {
		if f.FarmerName == "" {
			p.errorf("farm %d (%s): empty farmer_name", i, f.ID)
		}
		if f.Reasoning == "" {
			p.errorf("farm %d (%s): empty llm_reasoning", i, f.ID)
		}
		if math.IsNaN(f.Deviation) || math.IsInf(f.Deviation, 0) {
			p.errorf("farm %d (%s): non-finite deviation", i, f.ID)
		}
	}
	return p
}

func validateCoordinates(c domain.Collection) *phase {
	p := &phase{name: "Phase 2: Coordinates"}
	outside := 0
	for i, f := range c.Farms {
		if f.Geo.Lat == 0 && f.Geo.Lon == 0 {
			p.errorf("farm %d (%s): coordinates are 0,0", i, f.ID)
			continue
		}
		if !domain.DefaultFocus.Contains(f.Geo) {
			outside++
		}
	}
	if outside > 0 {
		fmt.Printf("note: %d of %d farms lie outside the default map focus\n", outside, c.Len())
	}
	return p
}

func validateAnomalyFlags(c domain.Collection, threshold float64) *phase {
	p := &phase{name: "Phase 3: Anomaly flags"}
	for i, f := range c.Farms {
		want := math.Abs(f.Deviation) > threshold
		if f.Anomaly != want {
			p.errorf("farm %d (%s): is_anomaly=%t but |deviation|=%.3f vs threshold %.3f",
				i, f.ID, f.Anomaly, math.Abs(f.Deviation), threshold)
		}
	}
	return p
}

func validateProximity(c domain.Collection, radius float64) *phase {
	p := &phase{name: fmt.Sprintf("Phase 4: Proximity (%.0f m)", radius)}

	sets := make(map[string]domain.IDSet, c.Len())
	total := 0
	for _, f := range c.Farms {
		s := domain.Neighbors(f, c.Farms, radius)
		sets[f.ID] = s
		total += s.Len() - 1
		if !s.Has(f.ID) {
			p.errorf("%s: proximity set does not include itself", f.ID)
		}
	}
	for id, s := range sets {
		for _, other := range s.IDs() {
			if !sets[other].Has(id) {
				p.errorf("%s lists %s as a neighbor but not the reverse", id, other)
			}
		}
	}

	if c.Len() > 0 {
		fmt.Printf("average neighbors within %.0f m: %.2f\n", radius, float64(total)/float64(c.Len()))
	}
	return p
}

func printCategories(c domain.Collection) {
	counts := map[domain.Category]int{}
	for _, f := range c.Farms {
		counts[f.Category()]++
	}
	fmt.Printf("Farms: %d total, %d normal, %d anomaly_high, %d anomaly_low\n", c.Len(),
		counts[domain.CategoryNormal], counts[domain.CategoryAnomalyHigh], counts[domain.CategoryAnomalyLow])
}
