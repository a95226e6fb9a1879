package domain

import "context"

// Transcript is the text recognized from a spoken survey answer.
type Transcript struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// SurveyRecord is the structured form of a field survey interview.
type SurveyRecord struct {
	FarmID           string   `json:"farm_id,omitempty"`
	FarmerName       string   `json:"farmer_name,omitempty"`
	CaneVariety      string   `json:"cane_variety,omitempty"`
	PlantingType     string   `json:"planting_type,omitempty"`
	IrrigationMethod string   `json:"irrigation_method,omitempty"`
	FertilizerType   string   `json:"fertilizer_type,omitempty"`
	PestsObserved    []string `json:"pests_observed,omitempty"`
	EstimatedYield   float64  `json:"estimated_yield_tph,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

// TranscriptionProvider turns recorded audio into text.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (Transcript, error)
}

// StructuredExtractionProvider turns a transcript into a survey record.
type StructuredExtractionProvider interface {
	Extract(ctx context.Context, transcript Transcript) (SurveyRecord, error)
}
