// internal/scraper/search.go
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/models"
)

// recordIndex is the Elasticsearch index for scraped property records.
const recordIndex = "property_records"

// SearchIndex serves full-text property-record search from Elasticsearch.
// Postgres stays the source of truth; the index is rebuilt from it.
type SearchIndex struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewSearchIndex(client *elasticsearch.Client, log logger.Logger) *SearchIndex {
	return &SearchIndex{
		client: client,
		logger: log.With(map[string]interface{}{
			"component": "record-search",
		}),
	}
}

// Index upserts one record document.
func (s *SearchIndex) Index(ctx context.Context, record *models.PropertyRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(recordIndex, err)
	}

	res, err := s.client.Index(
		recordIndex,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(record.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(recordIndex, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchQueryFailedError(recordIndex, fmt.Errorf("index: %s", res.Status()))
	}
	return nil
}

type searchHits struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.PropertyRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a multi-field match over address, suburb and zoning.
func (s *SearchIndex) Search(ctx context.Context, query string, limit int) ([]models.PropertyRecord, error) {
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"address^2", "suburb", "zoning"},
			},
		},
	})
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(recordIndex, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(recordIndex),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewSearchTimeoutError(recordIndex)
		}
		return nil, apperrors.NewSearchQueryFailedError(recordIndex, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(recordIndex, fmt.Errorf("search: %s", res.Status()))
	}

	var hits searchHits
	if err := json.NewDecoder(res.Body).Decode(&hits); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(recordIndex, err)
	}

	records := make([]models.PropertyRecord, 0, len(hits.Hits.Hits))
	for _, h := range hits.Hits.Hits {
		records = append(records, h.Source)
	}
	return records, nil
}
