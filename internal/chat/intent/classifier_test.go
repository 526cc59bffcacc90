// internal/chat/intent/classifier_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"canibuildit/internal/models"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	c := NewKeywordClassifier(nil, nil)

	tests := []struct {
		name  string
		query string
		want  models.Intent
	}{
		{
			name:  "plain question",
			query: "what is a resource consent?",
			want:  models.IntentPropertyAssessment, // "consent" is a property keyword
		},
		{
			name:  "general chit chat",
			query: "hello there, how does this work?",
			want:  models.IntentGeneral,
		},
		{
			name:  "empty query",
			query: "",
			want:  models.IntentGeneral,
		},
		{
			name:  "property keyword",
			query: "can I subdivide my property?",
			want:  models.IntentPropertyAssessment,
		},
		{
			name:  "street address pattern",
			query: "12 Ponsonby Road",
			want:  models.IntentPropertyAssessment,
		},
		{
			name:  "unit-style street address",
			query: "2/45 Queen Street please",
			want:  models.IntentPropertyAssessment,
		},
		{
			name:  "report request",
			query: "I want the full assessment report",
			want:  models.IntentReportRequest,
		},
		{
			name:  "report wins over property",
			query: "generate a report for my property at 12 Ponsonby Road",
			want:  models.IntentReportRequest,
		},
		{
			name:  "keyword match is case-insensitive",
			query: "WHAT ZONING applies here?",
			want:  models.IntentPropertyAssessment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query)
			assert.Equal(t, tt.want, got.Intent)
			assert.GreaterOrEqual(t, got.Confidence, 0.5)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestKeywordClassifier_ConfidenceGrowsWithSignals(t *testing.T) {
	c := NewKeywordClassifier(nil, nil)

	weak := c.Classify("tell me about zoning")
	strong := c.Classify("zoning and consent rules for the site at 12 Ponsonby Road")

	assert.Equal(t, models.IntentPropertyAssessment, weak.Intent)
	assert.Equal(t, models.IntentPropertyAssessment, strong.Intent)
	assert.Greater(t, strong.Confidence, weak.Confidence)
}

func TestKeywordClassifier_ConfiguredKeywordTables(t *testing.T) {
	c := NewKeywordClassifier([]string{"whare"}, []string{"purchase summary"})

	assert.Equal(t, models.IntentPropertyAssessment, c.Classify("rules for my whare").Intent)
	assert.Equal(t, models.IntentReportRequest, c.Classify("send the purchase summary").Intent)

	// The defaults are replaced, not merged.
	assert.Equal(t, models.IntentGeneral, c.Classify("tell me about zoning rules").Intent)
}
