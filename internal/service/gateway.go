package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"feedbackquest/internal/config"

	"go.uber.org/zap"
)

var (
	ErrMissingAPIKey   = errors.New("AI gateway API key is not configured")
	ErrRateLimited     = errors.New("rate limit exceeded, please try again later")
	ErrPaymentRequired = errors.New("AI credits exhausted, please add funds")
	ErrUpstream        = errors.New("AI gateway error")
	ErrGatewayTimeout  = errors.New("AI gateway timed out")
)

// GatewayClient sends a prompt to the text-completion gateway and returns the reply text
type GatewayClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// ChatMessage is one turn of a chat-completions request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

type gatewayClient struct {
	config *config.AIConfig
	client *http.Client
	logger *zap.Logger
}

// NewGatewayClient creates a chat-completions client; the per-call deadline comes from cfg.Timeout
func NewGatewayClient(cfg *config.AIConfig, logger *zap.Logger) GatewayClient {
	return &gatewayClient{
		config: cfg,
		client: &http.Client{},
		logger: logger,
	}
}

// Complete makes a single request, no retries
func (g *gatewayClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	apiKey := g.config.APIKey()
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(chatRequest{Model: g.config.Model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to encode gateway request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.CompletionsEndpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", ErrGatewayTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return "", ErrGatewayTimeout
		}
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrPaymentRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		g.logger.Error("AI gateway error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 512)),
		)
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}

	return chatResp.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
