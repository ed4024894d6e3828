package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/RMahshie/vibrascope/internal/repository"
	"github.com/RMahshie/vibrascope/pkg/models"
)

// foreignKeyViolation is the SQLSTATE for a missing referenced row
const foreignKeyViolation = "23503"

// PostgresAnalysisRepository implements AnalysisRepository for PostgreSQL
type PostgresAnalysisRepository struct {
	db *sql.DB
}

// NewPostgresAnalysisRepository creates a new PostgreSQL analysis repository
func NewPostgresAnalysisRepository(db *sql.DB) repository.AnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// Create inserts a new analysis record. An empty ID is filled in.
func (r *PostgresAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}

	query := `
		INSERT INTO analyses (id, session_id, status, progress, sample_rate_hz, recording_s3_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.SessionID,
		analysis.Status,
		analysis.Progress,
		analysis.SampleRateHz,
		analysis.RecordingS3Key,
		analysis.CreatedAt,
		analysis.UpdatedAt)

	return err
}

const selectAnalysis = `
		SELECT id, session_id, status, progress, sample_rate_hz, recording_s3_key, error_message, created_at, updated_at, completed_at
		FROM analyses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var analysis models.Analysis
	var recordingKey, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&analysis.ID,
		&analysis.SessionID,
		&analysis.Status,
		&analysis.Progress,
		&analysis.SampleRateHz,
		&recordingKey,
		&errorMsg,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
		&completedAt)

	if err != nil {
		return nil, err
	}

	if recordingKey.Valid {
		analysis.RecordingS3Key = &recordingKey.String
	}
	if errorMsg.Valid {
		analysis.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		analysis.CompletedAt = &completedAt.Time
	}

	return &analysis, nil
}

// GetByID retrieves an analysis by ID
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	analysis, err := scanAnalysis(r.db.QueryRowContext(ctx, selectAnalysis+`
		WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, repository.ErrNotFound)
	}
	return analysis, err
}

// GetBySessionID retrieves analyses by session ID
func (r *PostgresAnalysisRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, selectAnalysis+`
		WHERE session_id = $1
		ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}

// UpdateStatus updates the status and progress of an analysis
func (r *PostgresAnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE analyses
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError updates the error message for an analysis
func (r *PostgresAnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE analyses
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores analysis results, replacing earlier results of the same analysis
func (r *PostgresAnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	freqData, err := json.Marshal(results.FrequencyData)
	if err != nil {
		return fmt.Errorf("failed to marshal frequency data: %w", err)
	}

	query := `
		INSERT INTO analysis_results (id, analysis_id, frequency_data, sample_count, signal_length, sample_rate_hz, peak_frequency, peak_magnitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (analysis_id) DO UPDATE
		SET id = EXCLUDED.id, frequency_data = EXCLUDED.frequency_data, sample_count = EXCLUDED.sample_count,
		    signal_length = EXCLUDED.signal_length, sample_rate_hz = EXCLUDED.sample_rate_hz,
		    peak_frequency = EXCLUDED.peak_frequency, peak_magnitude = EXCLUDED.peak_magnitude,
		    created_at = EXCLUDED.created_at`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.AnalysisID,
		string(freqData),
		results.SampleCount,
		results.SignalLength,
		results.SampleRateHz,
		results.PeakFrequency,
		results.PeakMagnitude,
		results.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("analysis %s: %w", results.AnalysisID, repository.ErrNotFound)
	}
	return err
}

// GetResults retrieves analysis results
func (r *PostgresAnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	query := `
		SELECT id, analysis_id, frequency_data, sample_count, signal_length, sample_rate_hz, peak_frequency, peak_magnitude, created_at
		FROM analysis_results
		WHERE analysis_id = $1`

	var results models.AnalysisResults
	var freqData string

	err := r.db.QueryRowContext(ctx, query, analysisID).Scan(
		&results.ID,
		&results.AnalysisID,
		&freqData,
		&results.SampleCount,
		&results.SignalLength,
		&results.SampleRateHz,
		&results.PeakFrequency,
		&results.PeakMagnitude,
		&results.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results for %s: %w", analysisID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(freqData), &results.FrequencyData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal frequency data: %w", err)
	}

	return &results, nil
}

// DeleteResults removes the stored results of an analysis
func (r *PostgresAnalysisRepository) DeleteResults(ctx context.Context, analysisID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM analysis_results WHERE analysis_id = $1`, analysisID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("results for %s: %w", analysisID, repository.ErrNotFound)
	}
	return nil
}
