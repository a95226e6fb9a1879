// Package survey provides the stand-in speech and extraction providers used
// when no real backend is configured for field surveys.
package survey

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/couchcryptid/farm-map-service/internal/domain"
)

// ErrEmptyAudio is returned when a transcription request carries no audio.
var ErrEmptyAudio = errors.New("survey audio is empty")

// ErrEmptyTranscript is returned when an extraction request carries no text.
var ErrEmptyTranscript = errors.New("survey transcript is empty")

// DefaultLanguage is assumed when a request names no language.
const DefaultLanguage = "th"

// sampleTranscript is a typical answer to the field survey questions.
const sampleTranscript = "ปลูกอ้อยพันธุ์ขอนแก่น 3 เป็นอ้อยตอ ใช้น้ำหยด ใส่ปุ๋ยสูตร 15-15-15 " +
	"เจอหนอนกออ้อยกับเพลี้ยอ่อนนิดหน่อย คาดว่าได้ประมาณ 12 ตันต่อไร่"

// MockTranscriber returns a fixed Thai transcript after an optional delay.
type MockTranscriber struct {
	Delay time.Duration
}

// Transcribe implements domain.TranscriptionProvider.
func (m MockTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (domain.Transcript, error) {
	if len(audio) == 0 {
		return domain.Transcript{}, ErrEmptyAudio
	}
	if err := wait(ctx, m.Delay); err != nil {
		return domain.Transcript{}, err
	}
	if language == "" {
		language = DefaultLanguage
	}
	return domain.Transcript{Text: sampleTranscript, Language: language, Confidence: 0.92}, nil
}

// MockExtractor returns a fixed survey record. Only the notes echo the
// transcript text.
type MockExtractor struct {
	Delay time.Duration
}

// Extract implements domain.StructuredExtractionProvider.
func (m MockExtractor) Extract(ctx context.Context, transcript domain.Transcript) (domain.SurveyRecord, error) {
	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		return domain.SurveyRecord{}, ErrEmptyTranscript
	}
	if err := wait(ctx, m.Delay); err != nil {
		return domain.SurveyRecord{}, err
	}
	return domain.SurveyRecord{
		CaneVariety:      "ขอนแก่น 3",
		PlantingType:     "อ้อยตอ",
		IrrigationMethod: "น้ำหยด",
		FertilizerType:   "15-15-15",
		PestsObserved:    []string{"หนอนกออ้อย", "เพลี้ยอ่อน"},
		EstimatedYield:   12,
		Notes:            text,
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
