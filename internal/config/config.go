package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Blur analysis
	DefaultBlurThreshold float64
	CanonicalSize        int
	BlurMapJPEGQuality   int
	MaxWorkers           int

	// Collaborators; empty values disable the feature
	HistoryDBPath   string
	FaceCascadePath string
	OCRLanguages    []string

	// Empty allows any host; ".example.com" allows subdomains
	AllowedImageHosts []string

	AzureStorageAccount string
	AzureStorageKey     string

	Debug bool
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials are configured
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// LoadFromEnv reads an optional .env file and then the process environment
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 16*1024*1024), // 16MB

		DefaultBlurThreshold: parseFloatOrDefault("DEFAULT_BLUR_THRESHOLD", 100.0),
		CanonicalSize:        int(parseIntOrDefault("CANONICAL_SIZE", 1024)),
		BlurMapJPEGQuality:   int(parseIntOrDefault("BLUR_MAP_JPEG_QUALITY", 90)),
		MaxWorkers:           int(parseIntOrDefault("MAX_WORKERS", 0)),

		HistoryDBPath:   strings.TrimSpace(os.Getenv("HISTORY_DB_PATH")),
		FaceCascadePath: strings.TrimSpace(os.Getenv("FACE_CASCADE_PATH")),
		OCRLanguages:    parseListOrDefault("OCR_LANGUAGES", []string{"eng", "urd"}),

		AllowedImageHosts: parseListOrDefault("ALLOWED_IMAGE_HOSTS", nil),

		AzureStorageAccount: strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureStorageKey:     strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),

		Debug: parseBoolOrDefault("DEBUG", false),
	}

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that cannot be defaulted silently
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.DefaultBlurThreshold < 0 {
		return fmt.Errorf("DEFAULT_BLUR_THRESHOLD must be >= 0 (got %v)", c.DefaultBlurThreshold)
	}
	if c.CanonicalSize <= 0 {
		return fmt.Errorf("CANONICAL_SIZE must be > 0 (got %d)", c.CanonicalSize)
	}
	if c.BlurMapJPEGQuality < 1 || c.BlurMapJPEGQuality > 100 {
		return fmt.Errorf("BLUR_MAP_JPEG_QUALITY must be within 1..100 (got %d)", c.BlurMapJPEGQuality)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '+' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
