// internal/scraper/service_test.go
package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSearch struct {
	indexed []models.PropertyRecord
	results []models.PropertyRecord
	err     error
}

func (f *fakeSearch) Index(_ context.Context, record *models.PropertyRecord) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, *record)
	return nil
}

func (f *fakeSearch) Search(_ context.Context, _ string, _ int) ([]models.PropertyRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newScraperFixture(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeSearch) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	search := &fakeSearch{}
	svc := NewService(NewStore(db), search, logger.NewTestLogger(t))
	return svc, mock, search
}

func sourceRows(source *models.DataSource) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "url", "kind", "enabled", "created_at", "updated_at",
	}).AddRow(
		source.ID, source.Name, source.URL, source.Kind,
		source.Enabled, source.CreatedAt, source.UpdatedAt,
	)
}

func enabledSource() *models.DataSource {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &models.DataSource{
		ID:        "source-1",
		Name:      "Auckland Council property data",
		URL:       "https://example.govt.nz/data",
		Kind:      "council",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func jobRows(job *models.ScrapingJob) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "source_id", "status", "records_found", "error", "started_at", "finished_at", "created_at",
	}).AddRow(
		job.ID, job.SourceID, string(job.Status), job.RecordsFound,
		job.Error, job.StartedAt, job.FinishedAt, job.CreatedAt,
	)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestService_StartJob(t *testing.T) {
	svc, mock, _ := newScraperFixture(t)

	mock.ExpectQuery("FROM data_sources WHERE id =").
		WithArgs("source-1").
		WillReturnRows(sourceRows(enabledSource()))
	mock.ExpectExec("INSERT INTO scraping_jobs").WillReturnResult(sqlmock.NewResult(0, 1))

	job, err := svc.StartJob(context.Background(), "source-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, job.Status)
	assert.Equal(t, "source-1", job.SourceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_StartJobDisabledSource(t *testing.T) {
	svc, mock, _ := newScraperFixture(t)

	disabled := enabledSource()
	disabled.Enabled = false
	mock.ExpectQuery("FROM data_sources WHERE id =").
		WithArgs("source-1").
		WillReturnRows(sourceRows(disabled))

	_, err := svc.StartJob(context.Background(), "source-1")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CancelJob(t *testing.T) {
	svc, mock, _ := newScraperFixture(t)

	running := &models.ScrapingJob{
		ID:        "job-1",
		SourceID:  "source-1",
		Status:    models.JobStatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	mock.ExpectQuery("FROM scraping_jobs WHERE id =").
		WithArgs("job-1").
		WillReturnRows(jobRows(running))
	mock.ExpectExec("UPDATE scraping_jobs").WillReturnResult(sqlmock.NewResult(0, 1))

	job, err := svc.CancelJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, job.Status)
	require.NotNil(t, job.FinishedAt)
}

func TestService_CancelFinishedJobRejected(t *testing.T) {
	svc, mock, _ := newScraperFixture(t)

	done := &models.ScrapingJob{
		ID:        "job-1",
		SourceID:  "source-1",
		Status:    models.JobStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	mock.ExpectQuery("FROM scraping_jobs WHERE id =").
		WithArgs("job-1").
		WillReturnRows(jobRows(done))

	_, err := svc.CancelJob(context.Background(), "job-1")
	require.Error(t, err)
}

func TestService_CreateSourceValidation(t *testing.T) {
	svc, _, _ := newScraperFixture(t)

	_, err := svc.CreateSource(context.Background(), &models.DataSource{Name: "no url"})
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
}

func TestService_CreateRecordIndexesIntoSearch(t *testing.T) {
	svc, mock, search := newScraperFixture(t)

	mock.ExpectExec("INSERT INTO property_records").WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := svc.CreateRecord(context.Background(), &models.PropertyRecord{
		SourceID: "source-1",
		Address:  "12 Ponsonby Road",
		Suburb:   "Ponsonby",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.ScrapedAt.IsZero())

	require.Len(t, search.indexed, 1)
	assert.Equal(t, record.ID, search.indexed[0].ID)
}

func TestService_CreateRecordSurvivesIndexFailure(t *testing.T) {
	svc, mock, search := newScraperFixture(t)
	search.err = apperrors.NewSearchQueryFailedError("property_records", assert.AnError)

	mock.ExpectExec("INSERT INTO property_records").WillReturnResult(sqlmock.NewResult(0, 1))

	// Postgres is the source of truth; a dead index must not fail the write.
	_, err := svc.CreateRecord(context.Background(), &models.PropertyRecord{
		Address: "12 Ponsonby Road",
	})
	require.NoError(t, err)
}

func TestService_SearchRecords(t *testing.T) {
	svc, _, search := newScraperFixture(t)
	search.results = []models.PropertyRecord{
		{ID: "rec-1", Address: "12 Ponsonby Road"},
	}

	records, err := svc.SearchRecords(context.Background(), "ponsonby")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
}

func TestService_ListJobs(t *testing.T) {
	svc, mock, _ := newScraperFixture(t)

	now := time.Now().UTC()
	job := &models.ScrapingJob{ID: "job-1", SourceID: "source-1", Status: models.JobStatusQueued, CreatedAt: now}
	mock.ExpectQuery("FROM scraping_jobs ORDER BY created_at DESC").
		WithArgs(defaultListLimit).
		WillReturnRows(jobRows(job))

	jobs, err := svc.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
}
