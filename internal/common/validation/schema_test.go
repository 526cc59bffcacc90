package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }

func TestValidateInput_RequiredAndTypes(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"name":    {Type: "string", MinLength: intPtr(1)},
			"count":   {Type: "number", Minimum: floatPtr(0)},
			"enabled": {Type: "boolean"},
		},
		Required:             []string{"name"},
		AdditionalProperties: true,
	}

	tests := []struct {
		name      string
		input     map[string]interface{}
		valid     bool
		errorCode string
	}{
		{
			name:  "valid input",
			input: map[string]interface{}{"name": "jobs", "count": 3.0, "enabled": true},
			valid: true,
		},
		{
			name:      "missing required",
			input:     map[string]interface{}{"count": 3.0},
			valid:     false,
			errorCode: "REQUIRED_FIELD_MISSING",
		},
		{
			name:      "wrong type",
			input:     map[string]interface{}{"name": 42},
			valid:     false,
			errorCode: "INVALID_TYPE",
		},
		{
			name:      "below minimum",
			input:     map[string]interface{}{"name": "jobs", "count": -1.0},
			valid:     false,
			errorCode: "MINIMUM_VIOLATION",
		},
		{
			name:      "empty string under minLength",
			input:     map[string]interface{}{"name": ""},
			valid:     false,
			errorCode: "MIN_LENGTH_VIOLATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, schema)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.errorCode != "" {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.errorCode, result.Errors[0].Code)
			}
		})
	}
}

func TestValidateInput_PatternAndEnum(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"url":  {Type: "string", Pattern: strPtr("^https?://")},
			"kind": {Type: "string", Enum: []string{"council", "listing"}},
		},
		AdditionalProperties: true,
	}

	result := ValidateInput(map[string]interface{}{"url": "ftp://x", "kind": "auction"}, schema)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)

	result = ValidateInput(map[string]interface{}{"url": "https://x", "kind": "council"}, schema)
	assert.True(t, result.Valid)
}

func TestValidateInput_RejectsExtraFieldsWhenClosed(t *testing.T) {
	schema := JSONSchema{
		Type:       "object",
		Properties: map[string]Property{"name": {Type: "string"}},
	}

	result := ValidateInput(map[string]interface{}{"name": "x", "stray": 1}, schema)
	assert.False(t, result.Valid)
	assert.Equal(t, "EXTRA_FIELD", result.Errors[0].Code)
}

func TestValidateInput_NestedObjectAndArray(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"tags": {Type: "array", Items: &Property{Type: "string"}},
			"coords": {
				Type: "object",
				Properties: map[string]Property{
					"lat": {Type: "number"},
					"lng": {Type: "number"},
				},
				Required: []string{"lat", "lng"},
			},
		},
		AdditionalProperties: true,
	}

	result := ValidateInput(map[string]interface{}{
		"tags":   []interface{}{"a", 2},
		"coords": map[string]interface{}{"lat": -36.85},
	}, schema)

	require.False(t, result.Valid)
	joined := strings.Join(result.GetErrorMessages(), "; ")
	assert.Contains(t, joined, "tags[1]")
	assert.Contains(t, joined, "coords.lng")
}

func TestGetSchemaFromJSON(t *testing.T) {
	schema, err := GetSchemaFromJSON(`{
		"type": "object",
		"properties": {"address": {"type": "string", "minLength": 3}},
		"required": ["address"]
	}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"address"}, schema.Required)
	require.NotNil(t, schema.Properties["address"].MinLength)
	assert.Equal(t, 3, *schema.Properties["address"].MinLength)

	_, err = GetSchemaFromJSON(`{not json`)
	require.Error(t, err)
}

func TestLooksLikeStreetAddress(t *testing.T) {
	assert.True(t, LooksLikeStreetAddress("what can I build at 12 Ponsonby Road"))
	assert.True(t, LooksLikeStreetAddress("1/24 Queen St"))
	assert.False(t, LooksLikeStreetAddress("do I need consent for a deck"))
}

func TestRequireNonEmpty(t *testing.T) {
	missing := RequireNonEmpty(map[string]string{
		"name":    "Jo",
		"address": "   ",
	}, []string{"name", "address", "phone"})

	assert.Equal(t, []string{"address", "phone"}, missing)
}
