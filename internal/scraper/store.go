// internal/scraper/store.go
package scraper

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/models"
)

// Store persists the legacy dashboard entities in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- Scraping jobs ---

const insertJobQuery = `
	INSERT INTO scraping_jobs (id, source_id, status, records_found, error, started_at, finished_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (s *Store) CreateJob(ctx context.Context, job *models.ScrapingJob) error {
	_, err := s.db.ExecContext(ctx, insertJobQuery,
		job.ID, job.SourceID, string(job.Status), job.RecordsFound,
		job.Error, job.StartedAt, job.FinishedAt, job.CreatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectJobColumns = `
	SELECT id, source_id, status, records_found, error, started_at, finished_at, created_at
	FROM scraping_jobs`

func (s *Store) GetJob(ctx context.Context, id string) (*models.ScrapingJob, error) {
	row := s.db.QueryRowContext(ctx, selectJobColumns+` WHERE id = $1`, id)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewResourceNotFoundError("scraping_job", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("scraping_jobs", err)
	}
	return job, nil
}

func (s *Store) ListJobs(ctx context.Context, limit int) ([]models.ScrapingJob, error) {
	rows, err := s.db.QueryContext(ctx, selectJobColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("scraping_jobs", err)
	}
	defer rows.Close()

	jobs := []models.ScrapingJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scraping_jobs", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

const updateJobQuery = `
	UPDATE scraping_jobs
	SET status = $2, records_found = $3, error = $4, started_at = $5, finished_at = $6
	WHERE id = $1`

func (s *Store) UpdateJob(ctx context.Context, job *models.ScrapingJob) error {
	_, err := s.db.ExecContext(ctx, updateJobQuery,
		job.ID, string(job.Status), job.RecordsFound, job.Error,
		job.StartedAt, job.FinishedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.ScrapingJob, error) {
	var job models.ScrapingJob
	var status string

	err := row.Scan(
		&job.ID, &job.SourceID, &status, &job.RecordsFound,
		&job.Error, &job.StartedAt, &job.FinishedAt, &job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Status = models.JobStatus(status)
	return &job, nil
}

// --- Data sources ---

const insertSourceQuery = `
	INSERT INTO data_sources (id, name, url, kind, enabled, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (s *Store) CreateSource(ctx context.Context, source *models.DataSource) error {
	_, err := s.db.ExecContext(ctx, insertSourceQuery,
		source.ID, source.Name, source.URL, source.Kind,
		source.Enabled, source.CreatedAt, source.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectSourceColumns = `
	SELECT id, name, url, kind, enabled, created_at, updated_at
	FROM data_sources`

func (s *Store) GetSource(ctx context.Context, id string) (*models.DataSource, error) {
	row := s.db.QueryRowContext(ctx, selectSourceColumns+` WHERE id = $1`, id)

	var source models.DataSource
	err := row.Scan(
		&source.ID, &source.Name, &source.URL, &source.Kind,
		&source.Enabled, &source.CreatedAt, &source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewResourceNotFoundError("data_source", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("data_sources", err)
	}
	return &source, nil
}

func (s *Store) ListSources(ctx context.Context) ([]models.DataSource, error) {
	rows, err := s.db.QueryContext(ctx, selectSourceColumns+` ORDER BY name`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("data_sources", err)
	}
	defer rows.Close()

	sources := []models.DataSource{}
	for rows.Next() {
		var source models.DataSource
		if err := rows.Scan(
			&source.ID, &source.Name, &source.URL, &source.Kind,
			&source.Enabled, &source.CreatedAt, &source.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("data_sources", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

const updateSourceQuery = `
	UPDATE data_sources
	SET name = $2, url = $3, kind = $4, enabled = $5, updated_at = $6
	WHERE id = $1`

func (s *Store) UpdateSource(ctx context.Context, source *models.DataSource) error {
	source.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, updateSourceQuery,
		source.ID, source.Name, source.URL, source.Kind,
		source.Enabled, source.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (s *Store) DeleteSource(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM data_sources WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("data_sources", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("data_sources", err)
	}
	if rows == 0 {
		return apperrors.NewResourceNotFoundError("data_source", id)
	}
	return nil
}

// --- Property records ---

const insertRecordQuery = `
	INSERT INTO property_records (id, source_id, address, suburb, zoning, land_area, capital_value, attributes, scraped_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *Store) CreateRecord(ctx context.Context, record *models.PropertyRecord) error {
	attrs, err := json.Marshal(record.Attributes)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, insertRecordQuery,
		record.ID, record.SourceID, record.Address, record.Suburb,
		record.Zoning, record.LandArea, record.CapitalValue, attrs, record.ScrapedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectRecordColumns = `
	SELECT id, source_id, address, suburb, zoning, land_area, capital_value, attributes, scraped_at
	FROM property_records`

func (s *Store) GetRecord(ctx context.Context, id string) (*models.PropertyRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRecordColumns+` WHERE id = $1`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewResourceNotFoundError("property_record", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("property_records", err)
	}
	return record, nil
}

func (s *Store) ListRecords(ctx context.Context, limit int) ([]models.PropertyRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRecordColumns+` ORDER BY scraped_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("property_records", err)
	}
	defer rows.Close()

	records := []models.PropertyRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("property_records", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanRecord(row rowScanner) (*models.PropertyRecord, error) {
	var record models.PropertyRecord
	var attrs []byte

	err := row.Scan(
		&record.ID, &record.SourceID, &record.Address, &record.Suburb,
		&record.Zoning, &record.LandArea, &record.CapitalValue, &attrs, &record.ScrapedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &record.Attributes); err != nil {
			return nil, err
		}
	}
	return &record, nil
}
