package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 2048
)

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       anthropicModel,
		MaxTokens:   anthropicMaxTokens,
		Temperature: temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", domain.Permanentf("marshal anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", domain.Permanentf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.Transientf("anthropic request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.Transientf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody))
		if retryableStatus(resp.StatusCode) {
			return "", domain.Transient(msg)
		}
		return "", domain.Permanent(msg)
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", domain.Permanentf("unmarshal anthropic response: %w", err)
	}

	if result.Error != nil {
		return "", domain.Permanentf("anthropic API error: %s", result.Error.Message)
	}

	if len(result.Content) == 0 {
		return "", domain.Transientf("anthropic API returned no content")
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}

// CompleteJSON asks for a JSON-only answer and validates the payload.
// Anthropic has no structured-output mode on this endpoint, so the prompt
// carries the instruction and fences are stripped before decoding.
func (c *AnthropicClient) CompleteJSON(ctx context.Context, prompt string, temperature float64, out any) error {
	raw, err := c.Complete(ctx, prompt+"\n\nRespond with ONLY a JSON object, no prose.", temperature)
	if err != nil {
		return err
	}
	return decodeJSON(raw, out)
}
