package service

import (
	"github.com/anime-shed/sharpness-inspector-go/internal/analyzer"
	"github.com/anime-shed/sharpness-inspector-go/internal/ocr"
	"github.com/anime-shed/sharpness-inspector-go/pkg/models"
)

// BlurResultFrom rounds scores to two decimals and inlines the blur map
func BlurResultFrom(res *analyzer.Result) *models.BlurResult {
	methods := make(map[string]float64, len(res.PerMethod))
	for m, v := range res.PerMethod {
		methods[string(m)] = analyzer.Round2(v)
	}

	out := &models.BlurResult{
		Score:             analyzer.Round2(res.Overall),
		Methods:           methods,
		BlurMap:           models.JPEGDataURI(res.BlurMapJPEG),
		Details:           res.Details,
		Width:             res.Width,
		Height:            res.Height,
		ProcessingTimeSec: float64(res.ProcessingTime.Milliseconds()) / 1000,
	}
	if res.Classified() {
		t := *res.Threshold
		blurry := *res.IsBlurry
		out.Threshold = &t
		out.IsBlurry = &blurry
	}
	return out
}

func toOCRResult(r *ocr.Report) *models.OCRResult {
	attempts := make([]float64, len(r.AllAttempts))
	for i, c := range r.AllAttempts {
		attempts[i] = analyzer.Round2(c)
	}

	out := &models.OCRResult{
		Score:         analyzer.Round2(r.Score),
		Confidence:    analyzer.Round2(r.Confidence),
		TextFound:     r.TextFound,
		TextCount:     r.TextCount,
		DetectedText:  r.DetectedText,
		LanguageInfo:  r.LanguageInfo,
		Visualization: models.JPEGDataURI(r.Visualization),
		Details:       r.Details,
		AllAttempts:   attempts,
	}
	if r.Accuracy != nil {
		cer := analyzer.Round2(r.Accuracy.CER)
		wer := analyzer.Round2(r.Accuracy.WER)
		out.CER = &cer
		out.WER = &wer
	}
	return out
}
