package face

import (
	"image"
	"testing"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name   string
		faces  []image.Rectangle
		w, h   int
		expect float64
	}{
		{"no faces", nil, 100, 100, 0},
		{"quarter frame", []image.Rectangle{image.Rect(0, 0, 50, 50)}, 100, 100, 25},
		{"two faces add up", []image.Rectangle{image.Rect(0, 0, 10, 10), image.Rect(20, 20, 40, 40)}, 100, 100, 5},
		{"whole frame caps at 100", []image.Rectangle{image.Rect(0, 0, 100, 100), image.Rect(0, 0, 50, 50)}, 100, 100, 100},
		{"empty frame", []image.Rectangle{image.Rect(0, 0, 10, 10)}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.faces, tt.w, tt.h); got != tt.expect {
				t.Errorf("Confidence() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	if got := Details(2, 12.345); got != "Detected 2 face(s). Human presence confirmed (12.3%)." {
		t.Errorf("Unexpected details %q", got)
	}
	if got := Details(0, 0); got != "No human features detected in the image (0.0% confidence)." {
		t.Errorf("Unexpected details %q", got)
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(&Detection{
		Faces:         []image.Rectangle{image.Rect(10, 10, 30, 30)},
		Width:         40,
		Height:        40,
		Visualization: []byte{0xFF, 0xD8},
	})

	if !r.HumanDetected || r.FaceCount != 1 || r.TotalDetections != 1 {
		t.Errorf("Unexpected counts: %+v", r)
	}
	if r.Confidence != 25 {
		t.Errorf("Expected 25%% confidence, got %v", r.Confidence)
	}
	if len(r.Visualization) != 2 {
		t.Error("Visualization should be passed through")
	}
}
