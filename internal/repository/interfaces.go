package repository

import (
	"context"
	"time"
)

// ImageRepository loads raw image bytes from a remote source
type ImageRepository interface {
	// FetchImage retrieves the encoded image at imageURL
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// AnalysisRepository persists blur analysis history
type AnalysisRepository interface {
	// Save stores a record and returns its id
	Save(ctx context.Context, record *AnalysisRecord) (int64, error)

	// Get retrieves one record
	Get(ctx context.Context, id int64) (*AnalysisRecord, error)

	// Recent returns up to limit records, newest first
	Recent(ctx context.Context, limit int) ([]AnalysisRecord, error)

	Close() error
}

// Workflow names the analysis call shape that produced a record
type Workflow string

const (
	WorkflowMulti      Workflow = "multi"
	WorkflowClassified Workflow = "classified"
)

// AnalysisRecord is one stored blur analysis
type AnalysisRecord struct {
	ID               int64              `json:"id"`
	Source           string             `json:"source"`
	Workflow         Workflow           `json:"workflow"`
	Overall          float64            `json:"overall"`
	PerMethod        map[string]float64 `json:"per_method"`
	Threshold        *float64           `json:"threshold,omitempty"`
	IsBlurry         *bool              `json:"is_blurry,omitempty"`
	Width            int                `json:"width"`
	Height           int                `json:"height"`
	ProcessingTimeMs float64            `json:"processing_time_ms"`
	CreatedAt        time.Time          `json:"created_at"`
}
