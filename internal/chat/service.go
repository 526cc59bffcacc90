// internal/chat/service.go
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"canibuildit/internal/chat/intent"
	"canibuildit/internal/clients/genai"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/handoff"
	"canibuildit/internal/models"
)

const (
	generalSystemPrompt = "You are a helpful assistant for New Zealand building and " +
		"resource consent questions. Answer concisely and suggest the property " +
		"assessment when a specific site is mentioned."

	propertySystemPrompt = "You are a New Zealand property development assistant. " +
		"Assess feasibility for the property described below using zoning, consent " +
		"and site constraints. Be specific about what consents are likely required."
)

// Config controls conversation handling.
type Config struct {
	ConversationTTL  time.Duration
	MaxHistory       int
	PropertyKeywords []string
	ReportKeywords   []string
}

// Completer is the upstream the conversation is routed to.
type Completer interface {
	Complete(ctx context.Context, messages []genai.Message) (string, error)
}

// Service runs the assessment conversation: append query, classify, route to
// the upstream agent, append reply. Every successful exchange grows the
// conversation by exactly two entries, in order.
type Service struct {
	config     *Config
	store      *conversationStore
	classifier intent.Classifier
	completer  Completer
	handoff    *handoff.Store
	logger     logger.Logger
}

func NewService(config *Config, client *redis.Client, completer Completer, handoffStore *handoff.Store, log logger.Logger) *Service {
	return &Service{
		config:     config,
		store:      &conversationStore{client: client, ttl: config.ConversationTTL},
		classifier: intent.NewKeywordClassifier(config.PropertyKeywords, config.ReportKeywords),
		completer:  completer,
		handoff:    handoffStore,
		logger: log.With(map[string]interface{}{
			"component": "chat",
		}),
	}
}

// Exchange is the outcome of one chat round trip.
type Exchange struct {
	Reply         string              `json:"reply"`
	Intent        models.IntentResult `json:"intent"`
	ShowReportCTA bool                `json:"showReportCTA"`
	Entries       int                 `json:"entries"`
}

// Send appends the user message, routes it by intent, and appends the reply.
// On upstream failure nothing is persisted, so the conversation never holds a
// query without its response.
func (s *Service) Send(ctx context.Context, sessionID, message string) (*Exchange, error) {
	conv, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := s.classifier.Classify(message)

	system := generalSystemPrompt
	if result.Intent == models.IntentPropertyAssessment || result.Intent == models.IntentReportRequest {
		system = s.propertyPrompt(ctx, sessionID)
	}

	reply, err := s.completer.Complete(ctx, s.buildMessages(system, conv, message))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conv.Entries = append(conv.Entries,
		models.ConversationEntry{
			Type:      models.EntryTypeQuery,
			Content:   message,
			CreatedAt: now,
		},
		models.ConversationEntry{
			Type:          models.EntryTypeResponse,
			Content:       reply,
			ShowReportCTA: result.Intent == models.IntentReportRequest,
			CreatedAt:     now,
		},
	)

	if err := s.store.Save(ctx, conv); err != nil {
		return nil, err
	}

	s.logger.Info("chat exchange completed", map[string]interface{}{
		"sessionId": sessionID,
		"intent":    string(result.Intent),
		"entries":   len(conv.Entries),
	})

	return &Exchange{
		Reply:         reply,
		Intent:        result,
		ShowReportCTA: result.Intent == models.IntentReportRequest,
		Entries:       len(conv.Entries),
	}, nil
}

// Assess is the property-specific variant, always routed to the property
// agent and seeded from the intake hand-off regardless of keywords.
func (s *Service) Assess(ctx context.Context, sessionID, message string) (*Exchange, error) {
	conv, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if message == "" {
		message = "Assess this property for my project."
	}

	reply, err := s.completer.Complete(ctx, s.buildMessages(s.propertyPrompt(ctx, sessionID), conv, message))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conv.Entries = append(conv.Entries,
		models.ConversationEntry{
			Type:      models.EntryTypeQuery,
			Content:   message,
			CreatedAt: now,
		},
		models.ConversationEntry{
			Type:      models.EntryTypeResponse,
			Content:   reply,
			CreatedAt: now,
		},
	)

	if err := s.store.Save(ctx, conv); err != nil {
		return nil, err
	}

	return &Exchange{
		Reply: reply,
		Intent: models.IntentResult{
			Intent:     models.IntentPropertyAssessment,
			Confidence: 1.0,
		},
		Entries: len(conv.Entries),
	}, nil
}

// History returns the session's conversation as stored.
func (s *Service) History(ctx context.Context, sessionID string) (*models.Conversation, error) {
	return s.store.Load(ctx, sessionID)
}

// buildMessages assembles system prompt + capped history + current message.
func (s *Service) buildMessages(system string, conv *models.Conversation, message string) []genai.Message {
	entries := conv.Entries
	if s.config.MaxHistory > 0 && len(entries) > s.config.MaxHistory {
		entries = entries[len(entries)-s.config.MaxHistory:]
	}

	messages := make([]genai.Message, 0, len(entries)+2)
	messages = append(messages, genai.Message{Role: genai.RoleSystem, Content: system})
	for _, e := range entries {
		role := genai.RoleUser
		if e.Type == models.EntryTypeResponse {
			role = genai.RoleAssistant
		}
		messages = append(messages, genai.Message{Role: role, Content: e.Content})
	}
	return append(messages, genai.Message{Role: genai.RoleUser, Content: message})
}

// propertyPrompt enriches the property agent prompt with intake data when the
// session has submitted the wizard. A missing hand-off is not an error.
func (s *Service) propertyPrompt(ctx context.Context, sessionID string) string {
	var data models.PropertyIntakeData
	if err := s.handoff.Get(ctx, sessionID, handoff.KindPropertyIntakeData, &data); err != nil {
		return propertySystemPrompt
	}

	prompt := fmt.Sprintf("%s\n\nProperty: %s\nProject type: %s\nProject: %s",
		propertySystemPrompt, data.Address, data.ProjectType, data.ProjectDescription)
	if data.Budget != "" {
		prompt += fmt.Sprintf("\nBudget: %s", data.Budget)
	}
	return prompt
}
