// Package intent classifies user chat queries into enumerated intents.
// One classifier, configured with keyword tables, replaces the per-page
// keyword lists the assessment pages each carried their own copy of.
package intent

import (
	"strings"

	"canibuildit/internal/common/validation"
	"canibuildit/internal/models"
)

// Classifier maps a raw user query to an intent.
type Classifier interface {
	Classify(query string) models.IntentResult
}

// KeywordClassifier scores a query against configured keyword tables plus a
// street-address pattern. Report keywords win over property keywords so
// "get my property report" lands on the report flow.
type KeywordClassifier struct {
	propertyKeywords []string
	reportKeywords   []string
}

// defaultPropertyKeywords covers the union of the page variants' lists.
var defaultPropertyKeywords = []string{
	"address", "property", "section", "site", "zoning", "zone",
	"build", "consent", "boundary", "setback", "height",
}

var defaultReportKeywords = []string{
	"report", "full assessment", "premium", "detailed analysis",
}

func NewKeywordClassifier(propertyKeywords, reportKeywords []string) *KeywordClassifier {
	if len(propertyKeywords) == 0 {
		propertyKeywords = defaultPropertyKeywords
	}
	if len(reportKeywords) == 0 {
		reportKeywords = defaultReportKeywords
	}
	return &KeywordClassifier{
		propertyKeywords: lowerAll(propertyKeywords),
		reportKeywords:   lowerAll(reportKeywords),
	}
}

// Classify is deterministic and transport-independent.
func (c *KeywordClassifier) Classify(query string) models.IntentResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.IntentResult{Intent: models.IntentGeneral, Confidence: 1.0}
	}

	if hits := countHits(q, c.reportKeywords); hits > 0 {
		return models.IntentResult{
			Intent:     models.IntentReportRequest,
			Confidence: confidence(hits),
		}
	}

	propertyHits := countHits(q, c.propertyKeywords)
	if validation.LooksLikeStreetAddress(query) {
		// A concrete street address is the strongest property signal.
		propertyHits += 2
	}
	if propertyHits > 0 {
		return models.IntentResult{
			Intent:     models.IntentPropertyAssessment,
			Confidence: confidence(propertyHits),
		}
	}

	return models.IntentResult{Intent: models.IntentGeneral, Confidence: 0.5}
}

func countHits(query string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			hits++
		}
	}
	return hits
}

// confidence saturates at 0.95; a single keyword is a weak signal.
func confidence(hits int) float64 {
	c := 0.6 + 0.15*float64(hits-1)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
