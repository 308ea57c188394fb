package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/sharpness-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/sharpness-inspector-go/internal/errors"
	"github.com/anime-shed/sharpness-inspector-go/internal/face"
	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
	"github.com/anime-shed/sharpness-inspector-go/internal/observer"
	"github.com/anime-shed/sharpness-inspector-go/internal/ocr"
	"github.com/anime-shed/sharpness-inspector-go/internal/repository"
	"github.com/anime-shed/sharpness-inspector-go/pkg/models"
)

// ImageAnalysisService defines the workflows exposed over HTTP and the CLI
type ImageAnalysisService interface {
	// DetectBlur reports the multi-method breakdown for uploaded bytes
	DetectBlur(ctx context.Context, source string, data []byte) (*models.BlurResult, error)

	// AnalyzeBlur classifies uploaded bytes; a nil threshold uses the default
	AnalyzeBlur(ctx context.Context, source string, data []byte, threshold *float64) (*models.BlurResult, error)

	// AnalyzeBlurURL fetches and classifies a remote image
	AnalyzeBlurURL(ctx context.Context, imageURL string, threshold *float64) (*models.BlurResult, error)

	AnalyzeOCR(ctx context.Context, source string, data []byte, expectedText string) (*models.OCRResult, error)

	DetectHumans(ctx context.Context, source string, data []byte) (*models.HumanDetectionResult, error)

	// History lists recent blur analyses, newest first
	History(ctx context.Context, limit int) (*models.HistoryResponse, error)

	// Preview re-encodes uploaded bytes as a JPEG data URI
	Preview(data []byte) (string, error)
}

// Dependencies wires the service. OCR, Faces and History may be nil.
type Dependencies struct {
	Images           repository.ImageRepository
	Blur             analyzer.BlurAnalyzer
	OCR              *ocr.Analyzer
	Faces            face.Detector
	History          repository.AnalysisRepository
	Events           observer.Subject
	DefaultThreshold float64
	PreviewQuality   int
}

type imageAnalysisService struct {
	imageRepo        repository.ImageRepository
	blur             analyzer.BlurAnalyzer
	ocr              *ocr.Analyzer
	faces            face.Detector
	history          repository.AnalysisRepository
	events           observer.Subject
	defaultThreshold float64
	previewQuality   int
}

// NewImageAnalysisService creates a new image analysis service
func NewImageAnalysisService(deps Dependencies) ImageAnalysisService {
	history := deps.History
	if history == nil {
		history = repository.DisabledAnalysisRepository{}
	}
	events := deps.Events
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &imageAnalysisService{
		imageRepo:        deps.Images,
		blur:             deps.Blur,
		ocr:              deps.OCR,
		faces:            deps.Faces,
		history:          history,
		events:           events,
		defaultThreshold: deps.DefaultThreshold,
		previewQuality:   deps.PreviewQuality,
	}
}

func (s *imageAnalysisService) DetectBlur(ctx context.Context, source string, data []byte) (*models.BlurResult, error) {
	return s.runBlur(ctx, observer.WorkflowBlur, source, func() (*analyzer.Result, error) {
		return s.blur.AnalyzeMulti(ctx, data)
	})
}

func (s *imageAnalysisService) AnalyzeBlur(ctx context.Context, source string, data []byte, threshold *float64) (*models.BlurResult, error) {
	t := s.defaultThreshold
	if threshold != nil {
		t = *threshold
	}
	return s.runBlur(ctx, observer.WorkflowBlurClassified, source, func() (*analyzer.Result, error) {
		return s.blur.Analyze(ctx, data, t)
	})
}

func (s *imageAnalysisService) AnalyzeBlurURL(ctx context.Context, imageURL string, threshold *float64) (*models.BlurResult, error) {
	if err := s.imageRepo.ValidateImageURL(imageURL); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	start := time.Now()
	data, err := s.imageRepo.FetchImage(ctx, imageURL)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:      observer.ImageFetchFailed,
			Workflow:       observer.WorkflowBlurClassified,
			Source:         imageURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageFetched,
		Workflow:       observer.WorkflowBlurClassified,
		Source:         imageURL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(data)},
	})

	return s.AnalyzeBlur(ctx, imageURL, data, threshold)
}

// runBlur wraps one blur analysis with events, error translation and history
func (s *imageAnalysisService) runBlur(ctx context.Context, workflow observer.Workflow, source string, run func() (*analyzer.Result, error)) (*models.BlurResult, error) {
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		Workflow:  workflow,
		Source:    source,
	})

	res, err := run()
	if err != nil {
		appErr := apperrors.FromAnalysis(err)
		s.notifyFailed(ctx, workflow, source, appErr)
		return nil, appErr
	}

	out := BlurResultFrom(res)

	meta := map[string]interface{}{observer.MetaOverall: res.Overall}
	if res.IsBlurry != nil {
		meta[observer.MetaIsBlurry] = *res.IsBlurry
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Workflow:       workflow,
		Source:         source,
		ProcessingTime: res.ProcessingTime,
		Success:        true,
		Metadata:       meta,
	})

	out.RecordID = s.record(ctx, workflow, source, res)
	return out, nil
}

// record stores the analysis; history failures never fail the request
func (s *imageAnalysisService) record(ctx context.Context, workflow observer.Workflow, source string, res *analyzer.Result) int64 {
	kind := repository.WorkflowMulti
	if res.Classified() {
		kind = repository.WorkflowClassified
	}

	perMethod := make(map[string]float64, len(res.PerMethod))
	for m, v := range res.PerMethod {
		perMethod[string(m)] = v
	}

	id, err := s.history.Save(ctx, &repository.AnalysisRecord{
		Source:           source,
		Workflow:         kind,
		Overall:          res.Overall,
		PerMethod:        perMethod,
		Threshold:        res.Threshold,
		IsBlurry:         res.IsBlurry,
		Width:            res.Width,
		Height:           res.Height,
		ProcessingTimeMs: float64(res.ProcessingTime.Microseconds()) / 1000,
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"workflow": workflow,
			"source":   source,
		}).WithError(err).Warn("Failed to record analysis history")
		return 0
	}
	return id
}

func (s *imageAnalysisService) AnalyzeOCR(ctx context.Context, source string, data []byte, expectedText string) (*models.OCRResult, error) {
	if s.ocr == nil {
		return nil, apperrors.NewUnavailableError("OCR is not configured", nil)
	}

	start := time.Now()
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Workflow: observer.WorkflowOCR, Source: source})

	img, err := imagebuf.DecodeImage(data)
	if err != nil {
		appErr := apperrors.FromAnalysis(err)
		s.notifyFailed(ctx, observer.WorkflowOCR, source, appErr)
		return nil, appErr
	}

	report, err := s.ocr.Analyze(ctx, img, expectedText)
	if err != nil {
		appErr := apperrors.FromAnalysis(err)
		if appErr.Type == apperrors.ErrorTypeProcessing {
			appErr = apperrors.NewProcessingError("OCR error", err)
		}
		s.notifyFailed(ctx, observer.WorkflowOCR, source, appErr)
		return nil, appErr
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Workflow:       observer.WorkflowOCR,
		Source:         source,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"text_count": report.TextCount, "confidence": report.Confidence},
	})

	return toOCRResult(report), nil
}

func (s *imageAnalysisService) DetectHumans(ctx context.Context, source string, data []byte) (*models.HumanDetectionResult, error) {
	if s.faces == nil {
		return nil, apperrors.NewUnavailableError("human detection is not configured", nil)
	}
	if _, err := imagebuf.DecodeImage(data); err != nil {
		return nil, apperrors.FromAnalysis(err)
	}

	start := time.Now()
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Workflow: observer.WorkflowHuman, Source: source})

	det, err := s.faces.Detect(ctx, data)
	if err != nil {
		appErr := apperrors.FromAnalysis(err)
		s.notifyFailed(ctx, observer.WorkflowHuman, source, appErr)
		return nil, appErr
	}
	report := face.NewReport(det)

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Workflow:       observer.WorkflowHuman,
		Source:         source,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"face_count": report.FaceCount},
	})

	return &models.HumanDetectionResult{
		HumanDetected:   report.HumanDetected,
		Confidence:      analyzer.Round2(report.Confidence),
		FaceCount:       report.FaceCount,
		TotalDetections: report.TotalDetections,
		Visualization:   models.JPEGDataURI(report.Visualization),
		Details:         report.Details,
	}, nil
}

func (s *imageAnalysisService) History(ctx context.Context, limit int) (*models.HistoryResponse, error) {
	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		if errors.Is(err, repository.ErrRepositoryUnavailable) {
			return nil, apperrors.NewUnavailableError("analysis history is not configured", err)
		}
		return nil, apperrors.NewInternalError("failed to load analysis history", err)
	}

	entries := make([]models.HistoryEntry, 0, len(records))
	for _, r := range records {
		methods := make(map[string]float64, len(r.PerMethod))
		for k, v := range r.PerMethod {
			methods[k] = analyzer.Round2(v)
		}
		entries = append(entries, models.HistoryEntry{
			ID:                r.ID,
			Source:            r.Source,
			Workflow:          string(r.Workflow),
			Score:             analyzer.Round2(r.Overall),
			Methods:           methods,
			Threshold:         r.Threshold,
			IsBlurry:          r.IsBlurry,
			Width:             r.Width,
			Height:            r.Height,
			ProcessingTimeSec: r.ProcessingTimeMs / 1000,
			CreatedAt:         r.CreatedAt,
		})
	}
	return &models.HistoryResponse{Count: len(entries), Records: entries}, nil
}

func (s *imageAnalysisService) Preview(data []byte) (string, error) {
	img, err := imagebuf.DecodeImage(data)
	if err != nil {
		return "", apperrors.FromAnalysis(err)
	}
	jpeg, err := imagebuf.EncodeJPEG(img, s.previewQuality)
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode preview", err)
	}
	return models.JPEGDataURI(jpeg), nil
}

func (s *imageAnalysisService) notifyFailed(ctx context.Context, workflow observer.Workflow, source string, err error) {
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:    observer.AnalysisFailed,
		Workflow:     workflow,
		Source:       source,
		ErrorMessage: err.Error(),
	})
}
