// Command farmprep converts the farm analysis CSV into the JSON collection
// served to the map. It can rerun the neighborhood anomaly analysis from raw
// yields, replaces "nan" reasoning, and optionally thins out anomalous farms
// so the map is not dominated by red and blue markers.
//
// Usage:
//
//	go run ./cmd/farmprep \
//	  -in data/anomalous_farms_df.csv \
//	  -out data/farms.json \
//	  -keep-anomalous 0.2 -seed 42
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/farm-map-service/internal/domain"
)

// Column names of the analysis CSV.
const (
	colID        = "farm_id"
	colName      = "farmer_name"
	colLat       = "latitude"
	colLon       = "longitude"
	colYield     = "yield"
	colDeviation = "neighborhood_avg_yield_difference"
	colAnomaly   = "is_anomaly"
	colReasoning = "llm_reasoning"
	colNeighbors = "nearest_neighbors_indices"
)

type options struct {
	in            string
	out           string
	detect        bool
	k             int
	threshold     float64
	keepAnomalous float64
	seed          uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.in, "in", "", "analysis CSV to convert")
	flag.StringVar(&opts.out, "out", "", "output path for the JSON collection")
	flag.BoolVar(&opts.detect, "detect", false, "recompute deviation and anomaly flags from the yield column")
	flag.IntVar(&opts.k, "k", domain.DefaultNeighborCount, "neighbors per farm for -detect")
	flag.Float64Var(&opts.threshold, "threshold", domain.DefaultAnomalyThreshold, "absolute deviation above which a farm is anomalous")
	flag.Float64Var(&opts.keepAnomalous, "keep-anomalous", 1, "fraction of anomalous farms to keep (0..1)")
	flag.Uint64Var(&opts.seed, "seed", 1, "seed for -keep-anomalous sampling")
	flag.Parse()

	if opts.in == "" || opts.out == "" {
		flag.Usage()
		return errors.New("missing required flags: -in, -out")
	}
	if opts.keepAnomalous < 0 || opts.keepAnomalous > 1 {
		return fmt.Errorf("-keep-anomalous must be within 0..1, got %v", opts.keepAnomalous)
	}

	f, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	farms, err := convert(f, opts)
	if err != nil {
		return fmt.Errorf("convert %s: %w", opts.in, err)
	}

	if err := writeJSON(opts.out, farms); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	log.Printf("wrote %d farms to %s", len(farms), opts.out)
	printStats(farms)
	return nil
}

// convert reads the CSV and produces the farm list per opts.
func convert(r io.Reader, opts options) ([]domain.Farm, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{colID, colLat, colLon} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	if _, ok := colIdx[colYield]; opts.detect && !ok {
		return nil, fmt.Errorf("-detect needs a %q column", colYield)
	}

	var farms []domain.Farm
	if opts.detect {
		records, err := yieldRecords(rows[1:], colIdx)
		if err != nil {
			return nil, err
		}
		farms = domain.DetectAnomalies(records, opts.k, opts.threshold)
	} else {
		farms, err = precomputed(rows[1:], colIdx)
		if err != nil {
			return nil, err
		}
	}

	// An empty cell is what the analysis export writes for a missing
	// explanation, same as a literal "nan".
	for i := range farms {
		if farms[i].Reasoning == "" {
			farms[i].Reasoning = "nan"
		}
		farms[i].Reasoning = domain.CleanReasoning(farms[i].Reasoning)
	}

	if opts.keepAnomalous < 1 {
		farms = thinAnomalous(farms, opts.keepAnomalous, opts.seed)
	}
	if _, err := domain.NewCollection(farms, "farmprep"); err != nil {
		return nil, fmt.Errorf("converted collection is invalid: %w", err)
	}
	return farms, nil
}

func yieldRecords(rows [][]string, colIdx map[string]int) ([]domain.YieldRecord, error) {
	out := make([]domain.YieldRecord, 0, len(rows))
	for n, row := range rows {
		g, err := parseGeo(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		yield, err := parseFinite(get(row, colIdx, colYield))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", n+2, colYield, err)
		}
		out = append(out, domain.YieldRecord{
			ID:         get(row, colIdx, colID),
			FarmerName: get(row, colIdx, colName),
			Geo:        g,
			Yield:      yield,
			Reasoning:  get(row, colIdx, colReasoning),
		})
	}
	return out, nil
}

func precomputed(rows [][]string, colIdx map[string]int) ([]domain.Farm, error) {
	out := make([]domain.Farm, 0, len(rows))
	for n, row := range rows {
		g, err := parseGeo(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}

		f := domain.Farm{
			ID:              get(row, colIdx, colID),
			FarmerName:      get(row, colIdx, colName),
			Geo:             g,
			Reasoning:       get(row, colIdx, colReasoning),
			NeighborIndices: parseIndices(get(row, colIdx, colNeighbors)),
		}
		if s := get(row, colIdx, colDeviation); s != "" {
			if f.Deviation, err = parseFinite(s); err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+2, colDeviation, err)
			}
		}
		if s := get(row, colIdx, colAnomaly); s != "" {
			if f.Anomaly, err = strconv.ParseBool(s); err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+2, colAnomaly, err)
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func parseGeo(row []string, colIdx map[string]int) (domain.Geo, error) {
	lat, err := parseFinite(get(row, colIdx, colLat))
	if err != nil {
		return domain.Geo{}, fmt.Errorf("%s: %w", colLat, err)
	}
	lon, err := parseFinite(get(row, colIdx, colLon))
	if err != nil {
		return domain.Geo{}, fmt.Errorf("%s: %w", colLon, err)
	}
	return domain.Geo{Lat: lat, Lon: lon}, nil
}

// parseFinite is strconv.ParseFloat without the NaN and Inf spellings.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// parseIndices reads a list literal such as "[3, 17, 42]". Anything
// unparseable yields an empty list.
func parseIndices(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// thinAnomalous keeps every normal farm and a seeded random share of the
// anomalous ones, preserving input order.
func thinAnomalous(farms []domain.Farm, keep float64, seed uint64) []domain.Farm {
	var anomalous []int
	for i, f := range farms {
		if f.Anomaly {
			anomalous = append(anomalous, i)
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(anomalous), func(a, b int) { anomalous[a], anomalous[b] = anomalous[b], anomalous[a] })

	kept := make(map[int]bool, len(anomalous))
	for _, i := range anomalous[:int(float64(len(anomalous))*keep)] {
		kept[i] = true
	}

	out := make([]domain.Farm, 0, len(farms))
	for i, f := range farms {
		if !f.Anomaly || kept[i] {
			out = append(out, f)
		}
	}
	return out
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(farms []domain.Farm) {
	counts := map[domain.Category]int{}
	for _, f := range farms {
		counts[f.Category()]++
	}
	fmt.Printf("normal: %d, anomaly_high: %d, anomaly_low: %d\n",
		counts[domain.CategoryNormal], counts[domain.CategoryAnomalyHigh], counts[domain.CategoryAnomalyLow])
}
