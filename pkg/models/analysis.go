package models

import (
	"encoding/base64"
	"time"
)

// BlurResult is the blur detection payload. Threshold and IsBlurry are only
// present for classified analyses.
type BlurResult struct {
	Score             float64            `json:"score"`
	Methods           map[string]float64 `json:"methods"`
	BlurMap           string             `json:"blur_map,omitempty"`
	Details           string             `json:"details"`
	Threshold         *float64           `json:"threshold,omitempty"`
	IsBlurry          *bool              `json:"is_blurry,omitempty"`
	Width             int                `json:"width"`
	Height            int                `json:"height"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
	RecordID          int64              `json:"record_id,omitempty"`
}

// OCRResult is the text recognition payload
type OCRResult struct {
	Score         float64   `json:"score"`
	Confidence    float64   `json:"confidence"`
	TextFound     bool      `json:"text_found"`
	TextCount     int       `json:"text_count"`
	DetectedText  string    `json:"detected_text"`
	LanguageInfo  string    `json:"language_info"`
	Visualization string    `json:"visualization"`
	Details       string    `json:"details"`
	AllAttempts   []float64 `json:"all_attempts"`

	// Set when an expected transcription was supplied
	CER *float64 `json:"cer,omitempty"`
	WER *float64 `json:"wer,omitempty"`
}

// HumanDetectionResult is the face detection payload
type HumanDetectionResult struct {
	HumanDetected   bool    `json:"human_detected"`
	Confidence      float64 `json:"confidence"`
	FaceCount       int     `json:"face_count"`
	TotalDetections int     `json:"total_detections"`
	Visualization   string  `json:"visualization"`
	Details         string  `json:"details"`
}

// HistoryEntry is one stored blur analysis
type HistoryEntry struct {
	ID                int64              `json:"id"`
	Source            string             `json:"source"`
	Workflow          string             `json:"workflow"`
	Score             float64            `json:"score"`
	Methods           map[string]float64 `json:"methods"`
	Threshold         *float64           `json:"threshold,omitempty"`
	IsBlurry          *bool              `json:"is_blurry,omitempty"`
	Width             int                `json:"width"`
	Height            int                `json:"height"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
	CreatedAt         time.Time          `json:"created_at"`
}

// JPEGDataURI renders JPEG bytes for inline display
func JPEGDataURI(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
