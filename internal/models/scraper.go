// internal/models/scraper.go
package models

import "time"

// JobStatus is the polling status of a scraping job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ScrapingJob is a legacy dashboard entity, independent of the assessment flow.
type ScrapingJob struct {
	ID           string     `json:"id"`
	SourceID     string     `json:"sourceId"`
	Status       JobStatus  `json:"status"`
	RecordsFound int        `json:"recordsFound"`
	Error        string     `json:"error,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// DataSource is a configured origin for scraped property data.
type DataSource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PropertyRecord is a scraped property row, also indexed for search.
type PropertyRecord struct {
	ID           string                 `json:"id"`
	SourceID     string                 `json:"sourceId"`
	Address      string                 `json:"address"`
	Suburb       string                 `json:"suburb,omitempty"`
	Zoning       string                 `json:"zoning,omitempty"`
	LandArea     float64                `json:"landArea,omitempty"`
	CapitalValue int64                  `json:"capitalValue,omitempty"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	ScrapedAt    time.Time              `json:"scrapedAt"`
}
