package models

// BlurURLRequest asks for a classified blur analysis of a remote image.
// Threshold falls back to the configured default when omitted.
type BlurURLRequest struct {
	URL       string   `json:"url" binding:"required,url"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UploadResponse wraps the result of an uploaded-file workflow
type UploadResponse struct {
	Success       bool        `json:"success"`
	Filename      string      `json:"filename"`
	OriginalImage string      `json:"original_image"`
	Results       interface{} `json:"results"`
}

// URLResponse wraps the result of a URL workflow
type URLResponse struct {
	Success  bool        `json:"success"`
	ImageURL string      `json:"image_url"`
	Results  interface{} `json:"results"`
}

// HistoryResponse lists stored analyses
type HistoryResponse struct {
	Count   int            `json:"count"`
	Records []HistoryEntry `json:"records"`
}

// HealthResponse reports liveness plus in-process counters
type HealthResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Workers interface{} `json:"workers,omitempty"`
	Metrics interface{} `json:"metrics,omitempty"`
}
