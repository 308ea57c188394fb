package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" WARN ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"trace":   logrus.TraceLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var out bytes.Buffer
	l := New(&out, "info", "")

	l.WithField("overall", 42.5).Info("Blur analysis finished")

	var entry map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out.String(), err)
	}
	if entry["msg"] != "Blur analysis finished" {
		t.Errorf("Unexpected msg: %v", entry["msg"])
	}
	if entry["overall"] != 42.5 {
		t.Errorf("Unexpected overall field: %v", entry["overall"])
	}
}

func TestNew_TextFormatAndLevel(t *testing.T) {
	var out bytes.Buffer
	l := New(&out, "warn", "text")

	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(out.String(), "hidden") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out.String(), "msg=shown") {
		t.Errorf("Expected text formatted warning, got %q", out.String())
	}
}
