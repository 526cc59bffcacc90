// internal/intake/service.go
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/handoff"
	"canibuildit/internal/models"
)

// Service owns the intake wizard lifecycle: draft creation, linear step
// transitions, and the exactly-once submit hand-off.
type Service struct {
	config  *Config
	client  *redis.Client
	handoff *handoff.Store
	logger  logger.Logger
}

func NewService(config *Config, client *redis.Client, handoffStore *handoff.Store, log logger.Logger) *Service {
	return &Service{
		config:  config,
		client:  client,
		handoff: handoffStore,
		logger: log.With(map[string]interface{}{
			"component": "intake",
		}),
	}
}

func draftKey(intakeID string) string {
	return fmt.Sprintf("intake:draft:%s", intakeID)
}

// Start creates a fresh draft at step 1.
func (s *Service) Start(ctx context.Context, sessionID string) (*models.IntakeDraft, error) {
	now := time.Now().UTC()
	draft := &models.IntakeDraft{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Step:      models.StepPersonalInfo,
		State:     models.WizardStateDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}

	s.logger.Info("intake draft started", map[string]interface{}{
		"intakeId":  draft.ID,
		"sessionId": sessionID,
	})
	return draft, nil
}

// Get loads a draft by id.
func (s *Service) Get(ctx context.Context, intakeID string) (*models.IntakeDraft, error) {
	data, err := s.client.Get(ctx, draftKey(intakeID)).Result()
	if err == redis.Nil {
		return nil, apperrors.NewWizardNotFoundError(intakeID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("intake", err)
	}

	var draft models.IntakeDraft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("intake", err)
	}
	return &draft, nil
}

// Direction is a wizard transition request.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionBack Direction = "back"
)

// Advance merges the posted fields into the draft and moves one step forward
// or back. Transitions are strictly linear; Next is gated on the current
// step's required fields, Back never validates.
func (s *Service) Advance(ctx context.Context, intakeID string, step models.WizardStep, direction Direction, data models.PropertyIntakeData) (*models.IntakeDraft, error) {
	draft, err := s.Get(ctx, intakeID)
	if err != nil {
		return nil, err
	}

	if draft.State == models.WizardStateSubmitted {
		return nil, apperrors.NewWizardAlreadySubmittedError(intakeID)
	}
	if step != draft.Step {
		return nil, apperrors.NewValidationFailedError(
			fmt.Sprintf("wizard is at step %d, got step %d", draft.Step, step))
	}

	merge(&draft.Data, data)

	switch direction {
	case DirectionNext:
		if err := s.validateStep(draft.Step, draft.Data); err != nil {
			return nil, err
		}
		if draft.Step < models.StepReview {
			draft.Step++
		}
	case DirectionBack:
		if draft.Step > models.StepPersonalInfo {
			draft.Step--
		}
	default:
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown direction %q", direction))
	}

	draft.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Submit finalizes a draft at the review step and writes the accumulated
// struct to the hand-off store, unmodified, exactly once.
func (s *Service) Submit(ctx context.Context, intakeID string) (*models.IntakeDraft, error) {
	draft, err := s.Get(ctx, intakeID)
	if err != nil {
		return nil, err
	}

	if draft.State == models.WizardStateSubmitted {
		return nil, apperrors.NewWizardAlreadySubmittedError(intakeID)
	}
	if draft.Step != models.StepReview {
		return nil, apperrors.NewWizardStepBlockedError(
			fmt.Sprintf("submit requires step %d, wizard is at step %d", models.StepReview, draft.Step))
	}

	// Both earlier gates re-checked so a stale review page cannot submit
	// fields that never passed validation.
	if err := s.validateStep(models.StepPersonalInfo, draft.Data); err != nil {
		return nil, err
	}
	if err := s.validateStep(models.StepProjectDetails, draft.Data); err != nil {
		return nil, err
	}

	if err := s.handoff.Put(ctx, draft.SessionID, handoff.KindPropertyIntakeData, draft.Data); err != nil {
		return nil, err
	}

	draft.State = models.WizardStateSubmitted
	draft.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}

	s.logger.Info("intake submitted", map[string]interface{}{
		"intakeId":    draft.ID,
		"sessionId":   draft.SessionID,
		"projectType": string(draft.Data.ProjectType),
	})
	return draft, nil
}

func (s *Service) save(ctx context.Context, draft *models.IntakeDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	if err := s.client.Set(ctx, draftKey(draft.ID), data, s.config.DraftTTL).Err(); err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// merge copies only the fields present in the update onto the draft, so a
// step-2 post cannot blank out step-1 answers.
func merge(dst *models.PropertyIntakeData, src models.PropertyIntakeData) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.Coordinates != nil {
		dst.Coordinates = src.Coordinates
	}
	if src.ProjectType != "" {
		dst.ProjectType = src.ProjectType
	}
	if src.ProjectDescription != "" {
		dst.ProjectDescription = src.ProjectDescription
	}
	if src.Budget != "" {
		dst.Budget = src.Budget
	}
}
