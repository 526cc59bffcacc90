// Package genai wraps the hosted LLM completion API used for assessment
// conversations and report synthesis.
package genai

import (
	"context"
	"errors"
	"time"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/httpx"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/metrics"
)

// Role values for conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in the upstream conversation payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
	logger  logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	return &Client{
		http:    httpx.NewClient(cfg.Timeout, cfg.MaxRetries),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger: log.With(map[string]interface{}{
			"client": "genai",
		}),
	}
}

type completionRequest struct {
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// Complete sends the full message history (system prompt first) and returns
// the assistant reply. The caller owns history truncation.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()

	var resp completionResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/chat/completions", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, completionRequest{Messages: messages}, &resp)

	metrics.UpstreamCallDuration.WithLabelValues("genai").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("genai", "error").Inc()
		c.logger.Error("completion call failed", map[string]interface{}{
			"error":    err.Error(),
			"messages": len(messages),
		})
		if errors.Is(err, httpx.ErrUpstreamTimeout) {
			return "", apperrors.NewChatTimeoutError()
		}
		return "", apperrors.NewChatUpstreamFailedError(err)
	}

	metrics.UpstreamCallsTotal.WithLabelValues("genai", "success").Inc()
	return resp.Content, nil
}
