package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJPEGDataURI(t *testing.T) {
	if got := JPEGDataURI(nil); got != "" {
		t.Errorf("Expected empty URI for no data, got %q", got)
	}
	if got := JPEGDataURI([]byte{0xFF, 0xD8, 0xFF}); got != "data:image/jpeg;base64,/9j/" {
		t.Errorf("Unexpected URI %q", got)
	}
}

func TestBlurResult_OmitsClassificationForMulti(t *testing.T) {
	data, err := json.Marshal(BlurResult{Score: 42, Methods: map[string]float64{"fft": 10}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "threshold") || strings.Contains(s, "is_blurry") {
		t.Errorf("Multi-method result should not carry classification fields: %s", s)
	}

	threshold, blurry := 50.0, true
	data, _ = json.Marshal(BlurResult{Score: 42, Threshold: &threshold, IsBlurry: &blurry})
	if !strings.Contains(string(data), `"is_blurry":true`) {
		t.Errorf("Classified result should carry is_blurry: %s", data)
	}
}
