package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"augur/internal/llm"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat-completions endpoint. It backs
// both the classification collaborator and the final completion collaborator.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

const classifySystemPrompt = "You are a connector classifier. Given a user query, respond with ONLY a JSON array of connector identifiers relevant to answering it, drawn exclusively from this list: %s. Respond with [] when none apply. No prose, no code fences."

func (c *Client) Classify(ctx context.Context, query string, allowed []string) ([]string, error) {
	content, err := c.chat(ctx, []chatMessage{
		{Role: "system", Content: fmt.Sprintf(classifySystemPrompt, strings.Join(allowed, ", "))},
		{Role: "user", Content: query},
	}, nil)
	if err != nil {
		return nil, err
	}

	var labels []string
	if err := json.Unmarshal([]byte(stripFences(content)), &labels); err != nil {
		return nil, fmt.Errorf("classifier response is not a connector list: %w", err)
	}
	return labels, nil
}

func (c *Client) Complete(ctx context.Context, input llm.CompletionInput) (string, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return "", nil
	}
	var tools []map[string]any
	if input.Tools != nil {
		tools = []map[string]any{{"type": input.Tools.Type}}
	}
	return c.chat(ctx, []chatMessage{
		{Role: "user", Content: prompt},
	}, tools)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) chat(ctx context.Context, messages []chatMessage, tools []map[string]any) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" && requiresAPIKey(c.cfg.BaseURL) {
		return "", fmt.Errorf("%w: missing API key for %s", llm.ErrUnavailable, c.cfg.BaseURL)
	}

	payload := map[string]any{
		"model":    c.cfg.Model,
		"messages": messages,
	}
	if len(tools) > 0 {
		payload["tools"] = tools
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if apiKey := strings.TrimSpace(c.cfg.APIKey); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Error("chat completion failed", "status", res.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return "", fmt.Errorf("chat completion failed with status %d", res.StatusCode)
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat response returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// stripFences tolerates models that wrap the JSON list in a markdown code
// fence despite the instruction.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func requiresAPIKey(baseURL string) bool {
	lowered := strings.ToLower(baseURL)
	return !strings.Contains(lowered, "localhost") && !strings.Contains(lowered, "127.0.0.1")
}
