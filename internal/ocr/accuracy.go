package ocr

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// Accuracy compares recognised text against a known transcription
type Accuracy struct {
	CER            float64
	WER            float64
	EditDistance   int
	ReferenceWords int
}

// Compare computes the character error rate (edit distance over reference
// length) and the word error rate. Whitespace runs are collapsed first.
func Compare(expected, detected string) Accuracy {
	ref := strings.Fields(expected)
	hyp := strings.Fields(detected)

	refText := strings.Join(ref, " ")
	dist := levenshtein.Distance(refText, strings.Join(hyp, " "))

	acc := Accuracy{EditDistance: dist, ReferenceWords: len(ref)}
	if n := utf8.RuneCountInString(refText); n > 0 {
		acc.CER = float64(dist) / float64(n)
	}
	if len(ref) > 0 {
		acc.WER, _ = wer.WER(ref, hyp)
	}
	return acc
}
