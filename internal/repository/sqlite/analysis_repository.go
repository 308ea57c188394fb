package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anime-shed/sharpness-inspector-go/internal/repository"
)

const maxRecentLimit = 500

// AnalysisRepository implements repository.AnalysisRepository for SQLite.
type AnalysisRepository struct {
	db *DB
}

// NewAnalysisRepository creates a new SQLite analysis repository.
func NewAnalysisRepository(db *DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts a record. CreatedAt defaults to now.
func (r *AnalysisRepository) Save(ctx context.Context, rec *repository.AnalysisRecord) (int64, error) {
	perMethod, err := json.Marshal(rec.PerMethod)
	if err != nil {
		return 0, fmt.Errorf("failed to encode per-method scores: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var threshold sql.NullFloat64
	if rec.Threshold != nil {
		threshold = sql.NullFloat64{Float64: *rec.Threshold, Valid: true}
	}
	var blurry sql.NullBool
	if rec.IsBlurry != nil {
		blurry = sql.NullBool{Bool: *rec.IsBlurry, Valid: true}
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO analyses (source, workflow, overall, per_method, threshold, is_blurry, width, height, processing_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Source, string(rec.Workflow), rec.Overall, string(perMethod), threshold, blurry,
		rec.Width, rec.Height, rec.ProcessingTimeMs, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

// Get retrieves a record by id.
func (r *AnalysisRepository) Get(ctx context.Context, id int64) (*repository.AnalysisRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row := r.db.Conn().QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]repository.AnalysisRecord, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var records []repository.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (r *AnalysisRepository) Close() error {
	return r.db.Close()
}

const selectColumns = `
	SELECT id, source, workflow, overall, per_method, threshold, is_blurry, width, height, processing_time_ms, created_at
	FROM analyses`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*repository.AnalysisRecord, error) {
	var (
		rec       repository.AnalysisRecord
		workflow  string
		perMethod string
		threshold sql.NullFloat64
		blurry    sql.NullBool
	)
	if err := s.Scan(&rec.ID, &rec.Source, &workflow, &rec.Overall, &perMethod, &threshold, &blurry,
		&rec.Width, &rec.Height, &rec.ProcessingTimeMs, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	rec.Workflow = repository.Workflow(workflow)
	if err := json.Unmarshal([]byte(perMethod), &rec.PerMethod); err != nil {
		return nil, fmt.Errorf("failed to decode per-method scores: %w", err)
	}
	if threshold.Valid {
		v := threshold.Float64
		rec.Threshold = &v
	}
	if blurry.Valid {
		v := blurry.Bool
		rec.IsBlurry = &v
	}
	return &rec, nil
}
