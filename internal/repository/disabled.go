package repository

import "context"

// DisabledAnalysisRepository is used when no history database is configured.
// Saves are dropped and reads report ErrRepositoryUnavailable.
type DisabledAnalysisRepository struct{}

func (DisabledAnalysisRepository) Save(context.Context, *AnalysisRecord) (int64, error) {
	return 0, nil
}

func (DisabledAnalysisRepository) Get(context.Context, int64) (*AnalysisRecord, error) {
	return nil, ErrRepositoryUnavailable
}

func (DisabledAnalysisRepository) Recent(context.Context, int) ([]AnalysisRecord, error) {
	return nil, ErrRepositoryUnavailable
}

func (DisabledAnalysisRepository) Close() error { return nil }
