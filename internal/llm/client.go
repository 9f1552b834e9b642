package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"handraft-backend/pkg/config"

	"go.uber.org/zap"
)

// CompletionRequest is a normalized chat-completion call. When ImageDataURL is
// set the user message carries an image content part (vision transcription).
type CompletionRequest struct {
	Model        string
	System       string
	User         string
	ImageDataURL string
	MaxTokens    int
	Temperature  float64
	JSONMode     bool
}

// Completer is the single operation the generation pipeline needs from a
// language model provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Client talks to the OpenAI chat/completions API over plain HTTP, wrapping
// every call in the bounded retry guard.
type Client struct {
	cfg        *config.OpenAIConfig
	httpClient *http.Client
	retry      RetryConfig
	logger     *zap.Logger
}

func NewClient(cfg *config.OpenAIConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		retry: RetryConfig{
			MaxAttempts:       cfg.MaxAttempts,
			PerAttemptTimeout: cfg.AttemptTimeout,
		},
		logger: logger,
	}
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return WithRetry(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.complete(ctx, req)
	})
}

func (c *Client) complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	messages := []map[string]any{}
	if req.System != "" {
		messages = append(messages, map[string]any{
			"role":    "system",
			"content": req.System,
		})
	}

	var userContent any = req.User
	if req.ImageDataURL != "" {
		userContent = []map[string]any{
			{"type": "text", "text": req.User},
			{"type": "image_url", "image_url": map[string]any{"url": req.ImageDataURL}},
		}
	}
	messages = append(messages, map[string]any{
		"role":    "user",
		"content": userContent,
	})

	body := map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, respBody)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	c.logger.Debug("completion finished",
		zap.String("model", model),
		zap.String("finish_reason", parsed.Choices[0].FinishReason),
		zap.Int("prompt_tokens", parsed.Usage.PromptTokens),
		zap.Int("completion_tokens", parsed.Usage.CompletionTokens),
	)

	return parsed.Choices[0].Message.Content, nil
}

// parseAPIError extracts the provider error code from an OpenAI error body.
func parseAPIError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("HTTP %d: %s", statusCode, string(body)),
		}
	}
	code := errResp.Error.Code
	if code == "" {
		code = errResp.Error.Type
	}
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    errResp.Error.Message,
	}
}
