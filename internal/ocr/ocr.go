// Package ocr reads text from photographed documents. Several preprocessed
// variants of the image are passed to an Engine and the attempt with the best
// mean word confidence is reported.
package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
)

const maxDetectedTextRunes = 200

// Word is one recognised token with its bounding box and confidence (0..100)
type Word struct {
	Box        image.Rectangle
	Text       string
	Confidence float64
}

// Engine recognises words in an image
type Engine interface {
	Recognize(ctx context.Context, img image.Image) ([]Word, error)
}

// Attempt is the outcome of one preprocessing variant
type Attempt struct {
	Variant    string
	Words      []Word
	Text       string
	Confidence float64
	TextFound  bool
	TextCount  int
}

// Report is the OCR workflow result
type Report struct {
	Score         float64
	Confidence    float64
	TextFound     bool
	TextCount     int
	DetectedText  string
	LanguageInfo  string
	Details       string
	AllAttempts   []float64
	Visualization []byte
	Accuracy      *Accuracy
}

// Analyzer runs the variant pipeline against an Engine
type Analyzer struct {
	engine   Engine
	variants []Variant
	quality  int
}

func NewAnalyzer(engine Engine, jpegQuality int) *Analyzer {
	return &Analyzer{engine: engine, variants: Variants(), quality: jpegQuality}
}

// Analyze runs every variant and reports the most confident one. expected may
// be empty; otherwise character and word error rates are included.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image, expected string) (*Report, error) {
	attempts := make([]Attempt, 0, len(a.variants))
	for _, v := range a.variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		words, err := a.engine.Recognize(ctx, v.Prepare(img))
		if err != nil {
			return nil, fmt.Errorf("ocr variant %s: %w", v.Name, err)
		}
		attempt := summarize(v.Name, words)
		logger.WithFields(logrus.Fields{
			"variant":    v.Name,
			"words":      attempt.TextCount,
			"confidence": attempt.Confidence,
		}).Debug("OCR attempt finished")
		attempts = append(attempts, attempt)
	}

	best := bestAttempt(attempts)
	languages := DetectLanguages(best.Text)

	vis, err := Visualize(img, best)
	if err != nil {
		return nil, err
	}
	visJPEG, err := encode(vis, a.quality)
	if err != nil {
		return nil, err
	}

	all := make([]float64, len(attempts))
	for i, at := range attempts {
		all[i] = at.Confidence
	}

	report := &Report{
		Score:         best.Confidence,
		Confidence:    best.Confidence,
		TextFound:     best.TextFound,
		TextCount:     best.TextCount,
		DetectedText:  Truncate(best.Text, maxDetectedTextRunes),
		LanguageInfo:  languages,
		Details:       fmt.Sprintf("Found %d black text elements with %.1f%% avg confidence %s", best.TextCount, best.Confidence, languages),
		AllAttempts:   all,
		Visualization: visJPEG,
	}
	if strings.TrimSpace(expected) != "" {
		acc := Compare(expected, best.Text)
		report.Accuracy = &acc
	}
	return report, nil
}

// summarize keeps words with positive confidence and non-blank text
func summarize(variant string, words []Word) Attempt {
	attempt := Attempt{Variant: variant}
	var texts []string
	var total float64
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if w.Confidence <= 0 || text == "" {
			continue
		}
		w.Text = text
		attempt.Words = append(attempt.Words, w)
		texts = append(texts, text)
		total += w.Confidence
	}
	if len(texts) == 0 {
		return attempt
	}

	attempt.TextFound = true
	attempt.TextCount = len(texts)
	attempt.Confidence = total / float64(len(texts))
	attempt.Text = strings.Join(texts, " ")
	return attempt
}

// bestAttempt returns the first attempt with the highest confidence
func bestAttempt(attempts []Attempt) Attempt {
	if len(attempts) == 0 {
		return Attempt{}
	}
	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.Confidence > best.Confidence {
			best = a
		}
	}
	return best
}

// DetectLanguages names the scripts present in text, e.g. "(Urdu, English)"
func DetectLanguages(text string) string {
	var urdu, english, numbers bool
	for _, r := range text {
		switch {
		case (r >= 0x0600 && r <= 0x06FF) || (r >= 0x0750 && r <= 0x077F):
			urdu = true
		case r < utf8.RuneSelf && unicode.IsLetter(r):
			english = true
		}
		if unicode.IsDigit(r) {
			numbers = true
		}
	}

	var langs []string
	if urdu {
		langs = append(langs, "Urdu")
	}
	if english {
		langs = append(langs, "English")
	}
	if numbers {
		langs = append(langs, "Numbers")
	}
	if len(langs) == 0 {
		return "(Unknown)"
	}
	return "(" + strings.Join(langs, ", ") + ")"
}

// Truncate cuts text to n runes and appends "..." when anything was removed
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
