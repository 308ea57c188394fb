package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/sharpness-inspector-go/internal/analyzer"
	"github.com/anime-shed/sharpness-inspector-go/internal/config"
	apperrors "github.com/anime-shed/sharpness-inspector-go/internal/errors"
	"github.com/anime-shed/sharpness-inspector-go/internal/observer"
	"github.com/anime-shed/sharpness-inspector-go/pkg/models"
)

type fakeService struct {
	err error

	gotSource    string
	gotThreshold *float64
	gotExpected  string
	gotURL       string
	gotLimit     int
	hadDeadline  bool
}

func (f *fakeService) blurResult(ctx context.Context, source string) (*models.BlurResult, error) {
	f.gotSource = source
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &models.BlurResult{Score: 61.5, Methods: map[string]float64{"laplacian": 12}}, nil
}

func (f *fakeService) DetectBlur(ctx context.Context, source string, _ []byte) (*models.BlurResult, error) {
	return f.blurResult(ctx, source)
}

func (f *fakeService) AnalyzeBlur(ctx context.Context, source string, _ []byte, threshold *float64) (*models.BlurResult, error) {
	f.gotThreshold = threshold
	return f.blurResult(ctx, source)
}

func (f *fakeService) AnalyzeBlurURL(ctx context.Context, imageURL string, threshold *float64) (*models.BlurResult, error) {
	f.gotURL = imageURL
	f.gotThreshold = threshold
	return f.blurResult(ctx, imageURL)
}

func (f *fakeService) AnalyzeOCR(_ context.Context, source string, _ []byte, expected string) (*models.OCRResult, error) {
	f.gotSource = source
	f.gotExpected = expected
	if f.err != nil {
		return nil, f.err
	}
	return &models.OCRResult{TextFound: true, DetectedText: "NADRA"}, nil
}

func (f *fakeService) DetectHumans(_ context.Context, source string, _ []byte) (*models.HumanDetectionResult, error) {
	f.gotSource = source
	if f.err != nil {
		return nil, f.err
	}
	return &models.HumanDetectionResult{HumanDetected: true, FaceCount: 2}, nil
}

func (f *fakeService) History(_ context.Context, limit int) (*models.HistoryResponse, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return &models.HistoryResponse{Count: 1, Records: []models.HistoryEntry{{ID: 7, Workflow: "multi"}}}, nil
}

func (f *fakeService) Preview([]byte) (string, error) {
	return "data:image/jpeg;base64,AAAA", nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxRequestBodySize: 1024,
		AnalysisTimeout:    time.Second,
	}
}

func newTestRouter(t *testing.T, svc *fakeService) http.Handler {
	t.Helper()
	h, err := NewHandler(Options{
		Service:   svc,
		Config:    testConfig(),
		Registry:  prometheus.NewRegistry(),
		PoolStats: func() analyzer.PoolStats { return analyzer.PoolStats{Workers: 2} },
		Metrics:   observer.NewMetricsObserver(),
	})
	require.NoError(t, err)
	return h
}

func multipartRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, &fakeService{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, healthMessage, resp["message"])
	assert.Contains(t, resp, "workers")
	assert.Contains(t, resp, "metrics")
}

func TestHealthzAndMetrics(t *testing.T) {
	h := newTestRouter(t, &fakeService{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gin_gonic_requests_total")
}

func TestBlurDetection_Upload(t *testing.T) {
	svc := &fakeService{}
	h := newTestRouter(t, svc)

	rec := serve(h, multipartRequest(t, "/blur_detection", "../my card.png", []byte("png"), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success       bool              `json:"success"`
		Filename      string            `json:"filename"`
		OriginalImage string            `json:"original_image"`
		Results       models.BlurResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "my_card.png", resp.Filename)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", resp.OriginalImage)
	assert.Equal(t, 61.5, resp.Results.Score)
	assert.Equal(t, "upload:my_card.png", svc.gotSource)
	assert.True(t, svc.hadDeadline)
}

func TestUploadValidation(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantError  string
	}{
		{
			name: "missing file part",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/blur_detection", "", nil, map[string]string{"x": "y"})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No file part",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/blur_detection", strings.NewReader("{}"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No file part",
		},
		{
			name: "bad extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/human_detection", "notes.txt", []byte("hello"), nil)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid file type",
		},
		{
			name: "body over limit",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/blur_detection", "big.png", bytes.Repeat([]byte{1}, 4096), nil)
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "Uploaded file is too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			h := newTestRouter(t, svc)

			rec := serve(h, tt.req(t))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
			assert.Empty(t, svc.gotSource)
		})
	}
}

func TestBlurAnalyze_Threshold(t *testing.T) {
	t.Run("form threshold is forwarded", func(t *testing.T) {
		svc := &fakeService{}
		h := newTestRouter(t, svc)

		rec := serve(h, multipartRequest(t, "/blur/analyze", "a.jpg", []byte("x"), map[string]string{"threshold": "42.5"}))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.gotThreshold)
		assert.Equal(t, 42.5, *svc.gotThreshold)
	})

	t.Run("missing threshold uses default", func(t *testing.T) {
		svc := &fakeService{}
		h := newTestRouter(t, svc)

		rec := serve(h, multipartRequest(t, "/blur/analyze", "a.jpg", []byte("x"), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, svc.gotThreshold)
	})

	t.Run("non numeric threshold", func(t *testing.T) {
		svc := &fakeService{}
		h := newTestRouter(t, svc)

		rec := serve(h, multipartRequest(t, "/blur/analyze", "a.jpg", []byte("x"), map[string]string{"threshold": "sharp"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "threshold must be a number", decodeError(t, rec).Error)
	})
}

func TestBlurAnalyzeURL(t *testing.T) {
	svc := &fakeService{}
	h := newTestRouter(t, svc)

	body := `{"url":"https://cdn.example.com/id.jpg","threshold":30}`
	req := httptest.NewRequest(http.MethodPost, "/blur/analyze_url", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.URLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://cdn.example.com/id.jpg", resp.ImageURL)
	require.NotNil(t, svc.gotThreshold)
	assert.Equal(t, 30.0, *svc.gotThreshold)

	req = httptest.NewRequest(http.MethodPost, "/blur/analyze_url", strings.NewReader(`{"url":"not a url"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request format", decodeError(t, rec).Error)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"decode", apperrors.NewDecodeError("invalid image file", errors.New("bad")), http.StatusUnprocessableEntity},
		{"threshold", apperrors.NewInvalidThresholdError("invalid threshold", nil), http.StatusBadRequest},
		{"unavailable", apperrors.NewUnavailableError("human detection is not configured", nil), http.StatusServiceUnavailable},
		{"network", apperrors.NewNetworkError("failed to fetch image", nil), http.StatusBadGateway},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &fakeService{err: tt.err})
			rec := serve(h, multipartRequest(t, "/human_detection", "p.png", []byte("x"), nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestOCRAnalysis_ExpectedText(t *testing.T) {
	svc := &fakeService{}
	h := newTestRouter(t, svc)

	rec := serve(h, multipartRequest(t, "/ocr_analysis", "id.jpeg", []byte("x"), map[string]string{"expected_text": "NADRA"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NADRA", svc.gotExpected)
	assert.Contains(t, rec.Body.String(), `"detected_text":"NADRA"`)
}

func TestHistoryLimit(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantLimit  int
	}{
		{"", http.StatusOK, defaultHistoryLimit},
		{"?limit=5", http.StatusOK, 5},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run("limit"+tt.query, func(t *testing.T) {
			svc := &fakeService{}
			h := newTestRouter(t, svc)

			rec := serve(h, httptest.NewRequest(http.MethodGet, "/history"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLimit, svc.gotLimit)
		})
	}
}
