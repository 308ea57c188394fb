package container

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/anime-shed/sharpness-inspector-go/internal/analyzer"
	"github.com/anime-shed/sharpness-inspector-go/internal/config"
	"github.com/anime-shed/sharpness-inspector-go/internal/face"
	"github.com/anime-shed/sharpness-inspector-go/internal/face/haar"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
	"github.com/anime-shed/sharpness-inspector-go/internal/observer"
	"github.com/anime-shed/sharpness-inspector-go/internal/ocr"
	"github.com/anime-shed/sharpness-inspector-go/internal/ocr/tesseract"
	"github.com/anime-shed/sharpness-inspector-go/internal/repository"
	"github.com/anime-shed/sharpness-inspector-go/internal/repository/sqlite"
	"github.com/anime-shed/sharpness-inspector-go/internal/service"
	"github.com/anime-shed/sharpness-inspector-go/internal/storage"
	"github.com/anime-shed/sharpness-inspector-go/internal/transport"
	"github.com/anime-shed/sharpness-inspector-go/pkg/validation"
)

const ocrVisualizationQuality = 90

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	blurAnalyzer         analyzer.BlurAnalyzer
	faceDetector         *haar.Detector
	analysisRepository   repository.AnalysisRepository
	events               *observer.EventPublisher
	metrics              *observer.MetricsObserver
	imageAnalysisService service.ImageAnalysisService
	handler              http.Handler
}

// NewContainer builds the dependency graph. Optional collaborators (history,
// face detection, blob storage) are only created when configured.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{config: cfg}

	blurAnalyzer, err := analyzer.NewBlurAnalyzer(analyzer.Config{
		Workers:        cfg.MaxWorkers,
		CanonicalSize:  cfg.CanonicalSize,
		MapJPEGQuality: cfg.BlurMapJPEGQuality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blur analyzer: %w", err)
	}
	c.blurAnalyzer = blurAnalyzer

	fetcher, err := newImageFetcher(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	urlValidator := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts)
	imageRepository := repository.NewHTTPImageRepository(fetcher, urlValidator)

	c.analysisRepository = repository.DisabledAnalysisRepository{}
	if cfg.HistoryDBPath != "" {
		db, err := sqlite.New(cfg.HistoryDBPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		c.analysisRepository = sqlite.NewAnalysisRepository(db)
	}

	var faces face.Detector
	if cfg.FaceCascadePath != "" {
		detector, err := haar.NewDetector(cfg.FaceCascadePath)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.faceDetector = detector
		faces = detector
	} else {
		logger.Info("FACE_CASCADE_PATH not set, human detection disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promObserver, err := observer.NewPrometheusObserver(registry)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to register analysis metrics: %w", err)
	}

	c.metrics = observer.NewMetricsObserver()
	c.events = observer.NewEventPublisher()
	c.events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	c.events.Subscribe(c.metrics)
	c.events.Subscribe(promObserver)

	c.imageAnalysisService = service.NewImageAnalysisService(service.Dependencies{
		Images:           imageRepository,
		Blur:             blurAnalyzer,
		OCR:              ocr.NewAnalyzer(tesseract.NewEngine(cfg.OCRLanguages...), ocrVisualizationQuality),
		Faces:            faces,
		History:          c.analysisRepository,
		Events:           c.events,
		DefaultThreshold: cfg.DefaultBlurThreshold,
		PreviewQuality:   cfg.BlurMapJPEGQuality,
	})

	handler, err := transport.NewHandler(transport.Options{
		Service:   c.imageAnalysisService,
		Uploads:   validation.NewUploadValidator(validation.DefaultAllowedExtensions, cfg.MaxRequestBodySize),
		Config:    cfg,
		Registry:  registry,
		PoolStats: blurAnalyzer.Stats,
		Metrics:   c.metrics,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}
	c.handler = handler

	return c, nil
}

// newImageFetcher returns the plain HTTP fetcher, routed through Azure Blob
// Storage for blob URLs when credentials are configured
func newImageFetcher(cfg *config.Config) (storage.ImageFetcher, error) {
	httpFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize)
	if !cfg.AzureEnabled() {
		return httpFetcher, nil
	}

	blobFetcher, err := storage.NewAzureBlobFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.MaxRequestBodySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}
	logger.WithField("account", cfg.AzureStorageAccount).Info("Azure blob fetching enabled")
	return storage.NewRoutingFetcher(httpFetcher, blobFetcher), nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis service
func (c *Container) Service() service.ImageAnalysisService {
	return c.imageAnalysisService
}

// Close flushes pending events and releases the worker pool, the cascade
// and the history database
func (c *Container) Close() error {
	if c.events != nil {
		c.events.Flush()
	}

	var errs []error
	if c.blurAnalyzer != nil {
		errs = append(errs, c.blurAnalyzer.Close())
	}
	if c.faceDetector != nil {
		errs = append(errs, c.faceDetector.Close())
	}
	if c.analysisRepository != nil {
		errs = append(errs, c.analysisRepository.Close())
	}
	return errors.Join(errs...)
}
