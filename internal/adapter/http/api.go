package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/farm-map-service/internal/domain"
	"github.com/couchcryptid/farm-map-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/twpayne/go-geom/encoding/geojson"
)

const (
	maxAudioBytes      = 25 << 20
	maxTranscriptBytes = 1 << 20
	contentTypeGeoJSON = "application/geo+json"
)

// Snapshotter provides the current farm collection.
type Snapshotter interface {
	Snapshot() (domain.Collection, bool)
}

// APIConfig carries the dependencies of the farm map API. Geocoder may be
// nil to disable place enrichment on farm details.
type APIConfig struct {
	Catalog      Snapshotter
	RadiusMeters float64
	SummaryRunes int
	Geocoder     domain.Geocoder
	Transcriber  domain.TranscriptionProvider
	Extractor    domain.StructuredExtractionProvider
	Metrics      *observability.Metrics
	Logger       *slog.Logger
}

// API serves the farm map endpoints.
type API struct {
	cfg APIConfig
}

// NewAPI creates the farm map API. A non-positive radius falls back to
// domain.DefaultRadiusMeters.
func NewAPI(cfg APIConfig) *API {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = domain.DefaultRadiusMeters
	}
	return &API{cfg: cfg}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/farms", a.handleFarms)
	mux.HandleFunc("GET /api/farms/{id}", a.handleFarm)
	mux.HandleFunc("GET /api/view", a.handleView)
	mux.HandleFunc("GET /api/view.geojson", a.handleViewGeoJSON)
	mux.HandleFunc("POST /api/survey/transcribe", a.handleTranscribe)
	mux.HandleFunc("POST /api/survey/extract", a.handleExtract)
}

type farmItem struct {
	Farm     domain.Farm     `json:"farm"`
	Category domain.Category `json:"category"`
	Color    string          `json:"color"`
}

type farmsResponse struct {
	Source   string     `json:"source"`
	LoadedAt time.Time  `json:"loaded_at"`
	Count    int        `json:"count"`
	Farms    []farmItem `json:"farms"`
}

type viewResponse struct {
	State       domain.ViewState          `json:"state"`
	Descriptors []domain.RenderDescriptor `json:"descriptors"`
}

func (a *API) handleFarms(w http.ResponseWriter, r *http.Request) {
	coll, ok := a.snapshot(w)
	if !ok {
		return
	}

	farms := coll.Farms
	if raw := r.URL.Query().Get("bbox"); raw != "" {
		box, err := domain.ParseBBox(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		farms = domain.FilterBBox(farms, box)
	}

	items := make([]farmItem, len(farms))
	for i, f := range farms {
		cat := f.Category()
		items[i] = farmItem{Farm: f, Category: cat, Color: cat.Color()}
	}
	sharedobs.WriteJSON(w, http.StatusOK, farmsResponse{
		Source:   coll.Source,
		LoadedAt: coll.LoadedAt,
		Count:    len(items),
		Farms:    items,
	})
}

func (a *API) handleFarm(w http.ResponseWriter, r *http.Request) {
	coll, ok := a.snapshot(w)
	if !ok {
		return
	}

	id := r.PathValue("id")
	farm, found := coll.Lookup(id)
	if !found {
		writeError(w, http.StatusNotFound, domain.ErrUnknownFarm)
		return
	}

	detail := domain.DescribeFarm(r.Context(), farm, a.cfg.SummaryRunes, a.cfg.Geocoder, a.cfg.Logger)
	sharedobs.WriteJSON(w, http.StatusOK, detail)
}

func (a *API) handleView(w http.ResponseWriter, r *http.Request) {
	coll, state, ok := a.view(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, viewResponse{
		State:       state,
		Descriptors: a.reduce(coll, state),
	})
}

func (a *API) handleViewGeoJSON(w http.ResponseWriter, r *http.Request) {
	coll, state, ok := a.view(w, r)
	if !ok {
		return
	}

	fc, err := featureCollection(coll.Farms, a.reduce(coll, state))
	if err != nil {
		a.cfg.Logger.Error("encode geojson failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := json.Marshal(fc)
	if err != nil {
		a.cfg.Logger.Error("encode geojson failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *API) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Transcriber == nil {
		writeError(w, http.StatusNotImplemented, errors.New("transcription is not configured"))
		return
	}

	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err)
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("request body must contain audio"))
		return
	}

	tr, err := a.cfg.Transcriber.Transcribe(r.Context(), audio, r.URL.Query().Get("lang"))
	if err != nil {
		a.cfg.Logger.Warn("transcription failed", "error", err, "bytes", len(audio))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, tr)
}

func (a *API) handleExtract(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Extractor == nil {
		writeError(w, http.StatusNotImplemented, errors.New("structured extraction is not configured"))
		return
	}

	var tr domain.Transcript
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTranscriptBytes)).Decode(&tr); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(tr.Text) == "" {
		writeError(w, http.StatusBadRequest, errors.New("transcript text is required"))
		return
	}

	rec, err := a.cfg.Extractor.Extract(r.Context(), tr)
	if err != nil {
		a.cfg.Logger.Warn("structured extraction failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, rec)
}

// view resolves the ?selected= parameter into a view state. An absent or
// empty parameter is the cleared state.
func (a *API) view(w http.ResponseWriter, r *http.Request) (domain.Collection, domain.ViewState, bool) {
	coll, ok := a.snapshot(w)
	if !ok {
		return domain.Collection{}, domain.ViewState{}, false
	}

	selected := strings.TrimSpace(r.URL.Query().Get("selected"))
	if selected == "" {
		a.cfg.Metrics.Selections.WithLabelValues("http").Inc()
		return coll, domain.Clear(), true
	}

	state, err := domain.Select(coll, selected, a.cfg.RadiusMeters)
	if err != nil {
		a.cfg.Metrics.SelectionErrors.WithLabelValues("http").Inc()
		writeError(w, http.StatusNotFound, err)
		return domain.Collection{}, domain.ViewState{}, false
	}
	a.cfg.Metrics.Selections.WithLabelValues("http").Inc()
	return coll, state, true
}

func (a *API) reduce(coll domain.Collection, state domain.ViewState) []domain.RenderDescriptor {
	start := time.Now()
	out := domain.Reduce(coll.Farms, state)
	a.cfg.Metrics.ReduceDuration.Observe(time.Since(start).Seconds())
	return out
}

func (a *API) snapshot(w http.ResponseWriter) (domain.Collection, bool) {
	coll, ok := a.cfg.Catalog.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, errors.New("farm collection not loaded"))
	}
	return coll, ok
}

// featureCollection pairs each farm with its descriptor as a GeoJSON point
// feature. Farms and descriptors share order.
func featureCollection(farms []domain.Farm, descriptors []domain.RenderDescriptor) (*geojson.FeatureCollection, error) {
	if len(farms) != len(descriptors) {
		return nil, errors.New("descriptor count does not match farm count")
	}
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, len(farms))}
	for i, f := range farms {
		d := descriptors[i]
		fc.Features[i] = &geojson.Feature{
			ID:       f.ID,
			Geometry: f.Geo.Point(),
			Properties: map[string]any{
				"farmer_name":   f.FarmerName,
				"deviation":     f.Deviation,
				"is_anomaly":    f.Anomaly,
				"category":      d.Category,
				"emphasis":      d.Emphasis,
				"fill_color":    d.FillColor,
				"outline_color": d.OutlineColor,
				"opacity":       d.Opacity,
			},
		}
	}
	return fc, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
