// Package handoff carries validated structs across navigation boundaries.
// It replaces the browser sessionStorage hand-off with a server-side,
// versioned, TTL-bounded record per browser session.
package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
)

// Kind identifies what a hand-off record carries. The values mirror the
// sessionStorage keys the web pages used.
type Kind string

const (
	KindPropertyIntakeData    Kind = "propertyIntakeData"
	KindPropertyReportRequest Kind = "propertyReportRequest"
	KindGeneratedReport       Kind = "generatedReport"
	KindSelectedPlan          Kind = "selectedPlan"
	KindProjectDetails        Kind = "projectDetails"
)

// SchemaVersion is bumped whenever an envelope payload shape changes.
const SchemaVersion = 1

// Envelope wraps every stored payload with enough metadata to validate it on
// the way back out.
type Envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Kind          Kind            `json:"kind"`
	StoredAt      time.Time       `json:"storedAt"`
	Payload       json.RawMessage `json:"payload"`
}

// payloadSchemas gates decoding per kind. Unknown fields are allowed; the
// schemas pin the fields downstream pages actually read.
var payloadSchemas = map[Kind]string{
	KindPropertyIntakeData: `{
		"type": "object",
		"required": ["name", "address", "projectType", "projectDescription"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"address": {"type": "string", "minLength": 1},
			"coordinates": {
				"type": "object",
				"required": ["lat", "lng"],
				"properties": {
					"lat": {"type": "number"},
					"lng": {"type": "number"}
				}
			},
			"projectType": {"type": "string", "enum": ["residential", "commercial"]},
			"projectDescription": {"type": "string"},
			"budget": {"type": "string"}
		}
	}`,
	KindPropertyReportRequest: `{
		"type": "object",
		"required": ["address"],
		"properties": {
			"address": {"type": "string", "minLength": 1},
			"intakeId": {"type": "string"},
			"planId": {"type": "string"}
		}
	}`,
	KindGeneratedReport: `{
		"type": "object",
		"required": ["reportId"],
		"properties": {
			"reportId": {"type": "string", "minLength": 1},
			"status": {"type": "string"}
		}
	}`,
	KindSelectedPlan: `{
		"type": "object",
		"required": ["planId"],
		"properties": {
			"planId": {"type": "string", "minLength": 1},
			"price": {"type": "number"}
		}
	}`,
	KindProjectDetails: `{
		"type": "object",
		"required": ["projectType"],
		"properties": {
			"projectType": {"type": "string", "enum": ["residential", "commercial"]},
			"projectDescription": {"type": "string"},
			"budget": {"type": "string"}
		}
	}`,
}

// Store is the Redis-backed hand-off channel.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{
			"component": "handoff",
		}),
	}
}

func key(sessionID string, kind Kind) string {
	return fmt.Sprintf("handoff:%s:%s", sessionID, kind)
}

// Put validates payload against the kind's schema, wraps it in a versioned
// envelope, and stores it under the session.
func (s *Store) Put(ctx context.Context, sessionID string, kind Kind, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewHandoffDecodeFailedError(err)
	}

	if err := validatePayload(kind, raw); err != nil {
		return err
	}

	env := Envelope{
		SchemaVersion: SchemaVersion,
		Kind:          kind,
		StoredAt:      time.Now().UTC(),
		Payload:       raw,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return apperrors.NewHandoffDecodeFailedError(err)
	}

	if err := s.client.Set(ctx, key(sessionID, kind), data, s.ttl).Err(); err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	s.logger.Debug("hand-off stored", map[string]interface{}{
		"sessionId": sessionID,
		"kind":      string(kind),
	})
	return nil
}

// Get reads and validates a record, decoding the payload into out.
func (s *Store) Get(ctx context.Context, sessionID string, kind Kind, out interface{}) error {
	data, err := s.client.Get(ctx, key(sessionID, kind)).Result()
	if err == redis.Nil {
		return apperrors.NewHandoffNotFoundError(string(kind))
	}
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("handoff", err)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return apperrors.NewHandoffDecodeFailedError(err)
	}

	if env.SchemaVersion != SchemaVersion {
		return apperrors.NewHandoffSchemaInvalidError(
			fmt.Sprintf("schemaVersion %d, expected %d", env.SchemaVersion, SchemaVersion))
	}
	if env.Kind != kind {
		return apperrors.NewHandoffSchemaInvalidError(
			fmt.Sprintf("kind %q stored under %q key", env.Kind, kind))
	}

	if err := validatePayload(kind, env.Payload); err != nil {
		return err
	}

	if err := json.Unmarshal(env.Payload, out); err != nil {
		return apperrors.NewHandoffDecodeFailedError(err)
	}
	return nil
}

// Delete removes a record. The read side never deletes implicitly; the
// submit/report flow decides when a hand-off is consumed.
func (s *Store) Delete(ctx context.Context, sessionID string, kind Kind) error {
	return s.client.Del(ctx, key(sessionID, kind)).Err()
}

func validatePayload(kind Kind, raw json.RawMessage) error {
	schemaJSON, ok := payloadSchemas[kind]
	if !ok {
		return apperrors.NewHandoffSchemaInvalidError(fmt.Sprintf("unknown kind %q", kind))
	}

	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperrors.NewHandoffDecodeFailedError(err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return apperrors.NewHandoffSchemaInvalidError(strings.Join(msgs, "; "))
	}
	return nil
}
