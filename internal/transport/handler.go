package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"

	"github.com/anime-shed/sharpness-inspector-go/internal/analyzer"
	"github.com/anime-shed/sharpness-inspector-go/internal/config"
	apperrors "github.com/anime-shed/sharpness-inspector-go/internal/errors"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
	"github.com/anime-shed/sharpness-inspector-go/internal/observer"
	"github.com/anime-shed/sharpness-inspector-go/internal/service"
	"github.com/anime-shed/sharpness-inspector-go/pkg/models"
	"github.com/anime-shed/sharpness-inspector-go/pkg/validation"
)

const (
	defaultHistoryLimit = 20
	healthMessage       = "Sharpness Inspector is running"
)

// Options carries the collaborators of the HTTP layer. Registry, PoolStats
// and Metrics are optional.
type Options struct {
	Service   service.ImageAnalysisService
	Uploads   *validation.UploadValidator
	Config    *config.Config
	Registry  *prometheus.Registry
	PoolStats func() analyzer.PoolStats
	Metrics   *observer.MetricsObserver
}

type handler struct {
	svc       service.ImageAnalysisService
	uploads   *validation.UploadValidator
	cfg       *config.Config
	poolStats func() analyzer.PoolStats
	metrics   *observer.MetricsObserver
}

// NewHandler builds the gin engine with every route registered
func NewHandler(opts Options) (http.Handler, error) {
	if !opts.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handler{
		svc:       opts.Service,
		uploads:   opts.Uploads,
		cfg:       opts.Config,
		poolStats: opts.PoolStats,
		metrics:   opts.Metrics,
	}
	if h.uploads == nil {
		h.uploads = validation.NewUploadValidator(validation.DefaultAllowedExtensions, opts.Config.MaxRequestBodySize)
	}

	r := gin.New()

	promOpts := []ginprom.PrometheusOption{
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	}
	if opts.Registry != nil {
		promOpts = append(promOpts, ginprom.Registry(opts.Registry))
	}
	prom := ginprom.New(promOpts...)

	r.Use(
		gin.Recovery(),
		requestLogger("/healthz", "/metrics"),
		prom.Instrument(),
	)

	if opts.Config.Debug {
		logger.Warn("pprof endpoints are enabled and exposed. Do not run with DEBUG in production.")
		pprof.Register(r)
	}

	var hc []checks.Check
	if h.poolStats != nil {
		hc = append(hc, poolCheck{stats: h.poolStats})
	}
	if err := healthcheck.New(r, hc_config.DefaultConfig(), hc); err != nil {
		return nil, err
	}

	r.GET("/health", h.health)
	r.GET("/history", h.history)

	uploads := r.Group("/", requestSizeLimiter(opts.Config.MaxRequestBodySize))
	uploads.POST("/blur_detection", h.blurDetection)
	uploads.POST("/blur/analyze", h.blurAnalyze)
	uploads.POST("/blur/analyze_url", h.blurAnalyzeURL)
	uploads.POST("/ocr_analysis", h.ocrAnalysis)
	uploads.POST("/human_detection", h.humanDetection)

	return r, nil
}

func (h *handler) health(c *gin.Context) {
	resp := models.HealthResponse{Status: "healthy", Message: healthMessage}
	if h.poolStats != nil {
		resp.Workers = h.poolStats()
	}
	if h.metrics != nil {
		resp.Metrics = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) blurDetection(c *gin.Context) {
	h.handleUpload(c, func(ctx context.Context, source string, data []byte) (interface{}, error) {
		return h.svc.DetectBlur(ctx, source, data)
	})
}

func (h *handler) blurAnalyze(c *gin.Context) {
	threshold, err := parseThreshold(c.PostForm("threshold"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.handleUpload(c, func(ctx context.Context, source string, data []byte) (interface{}, error) {
		return h.svc.AnalyzeBlur(ctx, source, data, threshold)
	})
}

func (h *handler) blurAnalyzeURL(c *gin.Context) {
	var req models.BlurURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError("invalid request format", err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.AnalysisTimeout)
	defer cancel()

	res, err := h.svc.AnalyzeBlurURL(ctx, req.URL, req.Threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.URLResponse{Success: true, ImageURL: req.URL, Results: res})
}

func (h *handler) ocrAnalysis(c *gin.Context) {
	expected := c.PostForm("expected_text")
	h.handleUpload(c, func(ctx context.Context, source string, data []byte) (interface{}, error) {
		return h.svc.AnalyzeOCR(ctx, source, data, expected)
	})
}

func (h *handler) humanDetection(c *gin.Context) {
	h.handleUpload(c, func(ctx context.Context, source string, data []byte) (interface{}, error) {
		return h.svc.DetectHumans(ctx, source, data)
	})
}

func (h *handler) history(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, apperrors.NewValidationError("limit must be a positive integer", err))
			return
		}
		limit = n
	}

	resp, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type uploadWorkflow func(ctx context.Context, source string, data []byte) (interface{}, error)

// handleUpload reads the "file" part, runs fn under the analysis timeout and
// wraps the outcome in the upload envelope
func (h *handler) handleUpload(c *gin.Context, fn uploadWorkflow) {
	start := time.Now()

	filename, data, err := h.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.AnalysisTimeout)
	defer cancel()

	res, err := fn(ctx, "upload:"+filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	preview, err := h.svc.Preview(data)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"path":               c.FullPath(),
		"filename":           filename,
		"bytes":              len(data),
		"processing_time_ms": time.Since(start).Milliseconds(),
	}).Info("Upload processed")

	c.JSON(http.StatusOK, models.UploadResponse{
		Success:       true,
		Filename:      filename,
		OriginalImage: preview,
		Results:       res,
	})
}

func (h *handler) readUpload(c *gin.Context) (string, []byte, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			appErr := apperrors.NewValidationError("Uploaded file is too large", err)
			appErr.StatusCode = http.StatusRequestEntityTooLarge
			return "", nil, appErr
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return "", nil, apperrors.NewValidationError("No file part", nil)
		default:
			return "", nil, apperrors.NewValidationError("invalid multipart form", err)
		}
	}
	defer file.Close()

	if err := h.uploads.ValidateUpload(header.Filename, header.Size); err != nil {
		return "", nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, apperrors.NewValidationError("failed to read uploaded file", err)
	}

	return validation.SecureFilename(header.Filename), data, nil
}

// parseThreshold returns nil for an empty form value
func parseThreshold(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewInvalidThresholdError("threshold must be a number", err)
	}
	return &v, nil
}

// poolCheck fails /healthz when the analyzer has no workers
type poolCheck struct {
	stats func() analyzer.PoolStats
}

func (p poolCheck) Pass() bool   { return p.stats().Workers > 0 }
func (p poolCheck) Name() string { return "worker_pool" }
