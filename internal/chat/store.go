// internal/chat/store.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/models"
)

// conversationStore keeps one conversation per browser session in Redis.
// TTL-bounded; an expired conversation simply starts over, matching the
// in-page state the chat previously lived in.
type conversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

func conversationKey(sessionID string) string {
	return fmt.Sprintf("chat:conversation:%s", sessionID)
}

// Load returns the session's conversation, or an empty one if none exists.
func (s *conversationStore) Load(ctx context.Context, sessionID string) (*models.Conversation, error) {
	data, err := s.client.Get(ctx, conversationKey(sessionID)).Result()
	if err == redis.Nil {
		return &models.Conversation{ID: sessionID}, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("conversation", err)
	}

	var conv models.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("conversation", err)
	}
	return &conv, nil
}

func (s *conversationStore) Save(ctx context.Context, conv *models.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	if err := s.client.Set(ctx, conversationKey(conv.ID), data, s.ttl).Err(); err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
