package repository

import (
	"context"

	"github.com/anime-shed/sharpness-inspector-go/internal/storage"
)

// URLValidator checks that a URL may be fetched
type URLValidator interface {
	ValidateImageURL(imageURL string) error
}

// HTTPImageRepository implements ImageRepository on top of a storage fetcher
type HTTPImageRepository struct {
	fetcher   storage.ImageFetcher
	validator URLValidator
}

// NewHTTPImageRepository creates a new fetcher-backed image repository
func NewHTTPImageRepository(fetcher storage.ImageFetcher, validator URLValidator) ImageRepository {
	return &HTTPImageRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

// FetchImage validates imageURL and downloads it
func (r *HTTPImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	return r.fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *HTTPImageRepository) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return ErrInvalidImageURL
	}
	if r.validator == nil {
		return nil
	}
	return r.validator.ValidateImageURL(imageURL)
}
