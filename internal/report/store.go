// internal/report/store.go
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/models"
)

// Store persists premium reports in Postgres. The idempotency key ties a
// report to its checkout session so webhook retries and reloads converge on
// one row.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const insertReportQuery = `
	INSERT INTO premium_reports
		(id, idempotency_key, email, intake, analysis, summary, markdown, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Create inserts a new report row.
func (s *Store) Create(ctx context.Context, report *models.PremiumReport) error {
	intakeJSON, err := json.Marshal(report.Intake)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	analysisJSON, err := json.Marshal(report.Analysis)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, insertReportQuery,
		report.ID, report.IdempotencyKey, report.Email,
		intakeJSON, analysisJSON,
		report.Summary, report.Markdown, string(report.Status),
		report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectReportColumns = `
	SELECT id, idempotency_key, email, intake, analysis, summary, markdown, status, created_at, updated_at
	FROM premium_reports`

// GetByID loads a report by its id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.PremiumReport, error) {
	row := s.db.QueryRowContext(ctx, selectReportColumns+` WHERE id = $1`, id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewReportNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("premium_reports", err)
	}
	return report, nil
}

// GetByIdempotencyKey loads the report tied to a checkout session, or nil
// when none exists yet.
func (s *Store) GetByIdempotencyKey(ctx context.Context, key string) (*models.PremiumReport, error) {
	row := s.db.QueryRowContext(ctx, selectReportColumns+` WHERE idempotency_key = $1`, key)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("premium_reports", err)
	}
	return report, nil
}

const updateReportQuery = `
	UPDATE premium_reports
	SET analysis = $2, summary = $3, markdown = $4, status = $5, updated_at = $6
	WHERE id = $1`

// Update persists the mutable report fields after generation or a status
// transition.
func (s *Store) Update(ctx context.Context, report *models.PremiumReport) error {
	analysisJSON, err := json.Marshal(report.Analysis)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	report.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, updateReportQuery,
		report.ID, analysisJSON, report.Summary, report.Markdown,
		string(report.Status), report.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.PremiumReport, error) {
	var report models.PremiumReport
	var intakeJSON, analysisJSON []byte
	var status string

	err := row.Scan(
		&report.ID, &report.IdempotencyKey, &report.Email,
		&intakeJSON, &analysisJSON,
		&report.Summary, &report.Markdown, &status,
		&report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(intakeJSON, &report.Intake); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(analysisJSON, &report.Analysis); err != nil {
		return nil, err
	}
	report.Status = models.ReportStatus(status)
	return &report, nil
}
