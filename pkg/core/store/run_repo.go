package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"chronos_evaluation/pkg/models"
)

// RunRepo stores evaluation runs as JSONB blobs keyed by run ID.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE IF NOT EXISTS evaluation_runs (
//	  run_id TEXT PRIMARY KEY,
//	  service TEXT,
//	  report_json JSONB,
//	  created_at TIMESTAMPTZ
//	);
type RunRepo struct{}

// NewRunRepo creates a new repository instance.
func NewRunRepo() *RunRepo {
	return &RunRepo{}
}

// SaveRun upserts a finished run. Re-saving the same run ID replaces the
// stored report, which keeps retried runs idempotent.
func (r *RunRepo) SaveRun(ctx context.Context, report *models.RunReport) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	query := `
		INSERT INTO evaluation_runs (run_id, service, report_json, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id)
		DO UPDATE SET
			service = EXCLUDED.service,
			report_json = EXCLUDED.report_json,
			created_at = EXCLUDED.created_at;
	`

	if _, err := pool.Exec(ctx, query, report.RunID, report.Service, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LoadRun retrieves a persisted run by ID.
func (r *RunRepo) LoadRun(ctx context.Context, runID string) (*models.RunReport, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT report_json FROM evaluation_runs WHERE run_id = $1`

	var jsonData []byte
	if err := pool.QueryRow(ctx, query, runID).Scan(&jsonData); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no run found for id %s", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var report models.RunReport
	if err := json.Unmarshal(jsonData, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &report, nil
}
