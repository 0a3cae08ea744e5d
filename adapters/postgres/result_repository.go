package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"adsight/domain/core"
	"adsight/domain/evidence"
	"adsight/domain/run"
	"adsight/ports"
)

// ResultRepository persists validation runs and their results
type ResultRepository struct {
	db *sqlx.DB
}

var _ ports.ResultRepositoryPort = (*ResultRepository)(nil)

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Migrate creates the schema if it does not exist
func (r *ResultRepository) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS validation_runs (
			run_id      TEXT PRIMARY KEY,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS validation_results (
			id               BIGSERIAL PRIMARY KEY,
			run_id           TEXT NOT NULL REFERENCES validation_runs(run_id) ON DELETE CASCADE,
			hypothesis_id    TEXT NOT NULL,
			status           TEXT NOT NULL,
			confidence_final DOUBLE PRECISION NOT NULL,
			notes            TEXT NOT NULL DEFAULT '',
			validation       JSONB NOT NULL,
			evidence_refs    JSONB NOT NULL DEFAULT '[]',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS validation_failures (
			id            BIGSERIAL PRIMARY KEY,
			run_id        TEXT NOT NULL REFERENCES validation_runs(run_id) ON DELETE CASCADE,
			hypothesis_id TEXT NOT NULL,
			error         TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_validation_results_run ON validation_results(run_id);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate result schema: %w", err)
	}
	return nil
}

// SaveRun stores a run summary and all of its results atomically
func (r *ResultRepository) SaveRun(ctx context.Context, summary run.Summary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO validation_runs (run_id, started_at, finished_at) VALUES ($1, $2, $3)`,
		summary.RunID.String(), summary.StartedAt, summary.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", summary.RunID, err)
	}

	for _, result := range summary.Results {
		validationJSON, err := json.Marshal(result.Validation)
		if err != nil {
			return fmt.Errorf("failed to marshal validation block: %w", err)
		}
		refsJSON, err := json.Marshal(result.EvidenceRefs)
		if err != nil {
			return fmt.Errorf("failed to marshal evidence refs: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO validation_results (
				run_id, hypothesis_id, status, confidence_final, notes, validation, evidence_refs
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			summary.RunID.String(),
			result.HypothesisID.String(),
			string(result.Status),
			result.ConfidenceFinal,
			result.Notes,
			validationJSON,
			refsJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for hypothesis %s: %w", result.HypothesisID, err)
		}
	}

	for _, failure := range summary.Failures {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO validation_failures (run_id, hypothesis_id, error) VALUES ($1, $2, $3)`,
			summary.RunID.String(), failure.HypothesisID.String(), failure.Error)
		if err != nil {
			return fmt.Errorf("failed to insert failure for hypothesis %s: %w", failure.HypothesisID, err)
		}
	}

	return tx.Commit()
}

// GetRun loads one run summary with its results and failures
func (r *ResultRepository) GetRun(ctx context.Context, id core.RunID) (run.Summary, error) {
	var row struct {
		RunID      string    `db:"run_id"`
		StartedAt  time.Time `db:"started_at"`
		FinishedAt time.Time `db:"finished_at"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT run_id, started_at, finished_at FROM validation_runs WHERE run_id = $1`, id.String())
	if err == sql.ErrNoRows {
		return run.Summary{}, core.ErrRunNotFound
	}
	if err != nil {
		return run.Summary{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	summary := run.Summary{
		RunID:      core.RunID(row.RunID),
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}

	results, err := r.loadResults(ctx, id)
	if err != nil {
		return run.Summary{}, err
	}
	summary.Results = results

	failures, err := r.loadFailures(ctx, id)
	if err != nil {
		return run.Summary{}, err
	}
	summary.Failures = failures

	return summary, nil
}

// ListRuns returns the most recent run summaries, newest first
func (r *ResultRepository) ListRuns(ctx context.Context, limit int) ([]run.Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT run_id FROM validation_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	summaries := make([]run.Summary, 0, len(ids))
	for _, id := range ids {
		summary, err := r.GetRun(ctx, core.RunID(id))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *ResultRepository) loadResults(ctx context.Context, id core.RunID) ([]evidence.ValidationResult, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT hypothesis_id, status, confidence_final, notes, validation, evidence_refs
		FROM validation_results
		WHERE run_id = $1
		ORDER BY hypothesis_id`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load results for run %s: %w", id, err)
	}
	defer rows.Close()

	var results []evidence.ValidationResult
	for rows.Next() {
		var (
			result         evidence.ValidationResult
			status         string
			validationJSON []byte
			refsJSON       []byte
		)
		var hypothesisID string
		if err := rows.Scan(&hypothesisID, &status, &result.ConfidenceFinal, &result.Notes, &validationJSON, &refsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		result.HypothesisID = core.HypothesisID(hypothesisID)
		result.Status = evidence.Status(status)
		result.RunID = id
		if err := json.Unmarshal(validationJSON, &result.Validation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validation block: %w", err)
		}
		if err := json.Unmarshal(refsJSON, &result.EvidenceRefs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence refs: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (r *ResultRepository) loadFailures(ctx context.Context, id core.RunID) ([]run.Failure, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT hypothesis_id, error
		FROM validation_failures
		WHERE run_id = $1
		ORDER BY hypothesis_id`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load failures for run %s: %w", id, err)
	}
	defer rows.Close()

	var failures []run.Failure
	for rows.Next() {
		var hypothesisID, errText string
		if err := rows.Scan(&hypothesisID, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan failure row: %w", err)
		}
		failures = append(failures, run.Failure{
			HypothesisID: core.HypothesisID(hypothesisID),
			Error:        errText,
		})
	}
	return failures, rows.Err()
}
