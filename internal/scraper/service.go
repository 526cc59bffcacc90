// internal/scraper/service.go
package scraper

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/models"
)

// RecordIndexer mirrors records into the search index.
type RecordIndexer interface {
	Index(ctx context.Context, record *models.PropertyRecord) error
	Search(ctx context.Context, query string, limit int) ([]models.PropertyRecord, error)
}

const defaultListLimit = 50

// Service is the legacy dashboard backend: scraping jobs, data sources and
// property records. It shares nothing with the assessment flow.
type Service struct {
	store  *Store
	search RecordIndexer
	logger logger.Logger
}

func NewService(store *Store, search RecordIndexer, log logger.Logger) *Service {
	return &Service{
		store:  store,
		search: search,
		logger: log.With(map[string]interface{}{
			"component": "scraper",
		}),
	}
}

// --- Jobs ---

// StartJob queues a scraping job for a configured source.
func (s *Service) StartJob(ctx context.Context, sourceID string) (*models.ScrapingJob, error) {
	source, err := s.store.GetSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if !source.Enabled {
		return nil, apperrors.NewBusinessRuleError(
			"Data source is disabled", "sourceId: "+sourceID)
	}

	job := &models.ScrapingJob{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		Status:    models.JobStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("scraping job queued", map[string]interface{}{
		"jobId":    job.ID,
		"sourceId": sourceID,
	})
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*models.ScrapingJob, error) {
	return s.store.GetJob(ctx, id)
}

func (s *Service) ListJobs(ctx context.Context) ([]models.ScrapingJob, error) {
	return s.store.ListJobs(ctx, defaultListLimit)
}

// CancelJob cancels a queued or running job. Finished jobs cannot be
// cancelled.
func (s *Service) CancelJob(ctx context.Context, id string) (*models.ScrapingJob, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case models.JobStatusQueued, models.JobStatusRunning:
		now := time.Now().UTC()
		job.Status = models.JobStatusCancelled
		job.FinishedAt = &now
		if err := s.store.UpdateJob(ctx, job); err != nil {
			return nil, err
		}
		return job, nil
	default:
		return nil, apperrors.NewBusinessRuleError(
			"Job is not cancellable", "status: "+string(job.Status))
	}
}

// --- Sources ---

func (s *Service) CreateSource(ctx context.Context, source *models.DataSource) (*models.DataSource, error) {
	if source.Name == "" || source.URL == "" {
		return nil, apperrors.NewValidationFailedError("name and url are required")
	}

	now := time.Now().UTC()
	source.ID = uuid.NewString()
	source.CreatedAt = now
	source.UpdatedAt = now
	if err := s.store.CreateSource(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *Service) GetSource(ctx context.Context, id string) (*models.DataSource, error) {
	return s.store.GetSource(ctx, id)
}

func (s *Service) ListSources(ctx context.Context) ([]models.DataSource, error) {
	return s.store.ListSources(ctx)
}

func (s *Service) UpdateSource(ctx context.Context, source *models.DataSource) (*models.DataSource, error) {
	existing, err := s.store.GetSource(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	if source.Name != "" {
		existing.Name = source.Name
	}
	if source.URL != "" {
		existing.URL = source.URL
	}
	if source.Kind != "" {
		existing.Kind = source.Kind
	}
	existing.Enabled = source.Enabled

	if err := s.store.UpdateSource(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) DeleteSource(ctx context.Context, id string) error {
	return s.store.DeleteSource(ctx, id)
}

// --- Records ---

// CreateRecord persists a record and mirrors it into the search index.
// Index failures are logged, not fatal; Postgres is the source of truth.
func (s *Service) CreateRecord(ctx context.Context, record *models.PropertyRecord) (*models.PropertyRecord, error) {
	if record.Address == "" {
		return nil, apperrors.NewValidationFailedError("address is required")
	}

	record.ID = uuid.NewString()
	if record.ScrapedAt.IsZero() {
		record.ScrapedAt = time.Now().UTC()
	}
	if err := s.store.CreateRecord(ctx, record); err != nil {
		return nil, err
	}

	if err := s.search.Index(ctx, record); err != nil {
		s.logger.Warn("record indexing failed", map[string]interface{}{
			"recordId": record.ID,
			"error":    err.Error(),
		})
	}
	return record, nil
}

func (s *Service) GetRecord(ctx context.Context, id string) (*models.PropertyRecord, error) {
	return s.store.GetRecord(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context) ([]models.PropertyRecord, error) {
	return s.store.ListRecords(ctx, defaultListLimit)
}

// SearchRecords serves full-text search from Elasticsearch.
func (s *Service) SearchRecords(ctx context.Context, query string) ([]models.PropertyRecord, error) {
	return s.search.Search(ctx, query, defaultListLimit)
}
