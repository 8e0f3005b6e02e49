package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 120 * time.Second

// ClientOptions configures the chat-completions client.
type ClientOptions struct {
	// BaseURLs accepts one or more endpoints separated by commas, semicolons,
	// or whitespace. Each is normalized to an http URL ending in /v1.
	BaseURLs string
	Model    string
	APIKey   string
	Timeout  time.Duration
	// Guard optionally short-circuits calls while the backend is cooling down.
	Guard *Guard
}

// Client talks to an OpenAI-compatible chat-completions server such as
// Ollama or LM Studio. Multiple base URLs are tried in order; the first
// endpoint that answers wins.
type Client struct {
	baseURLs []string
	model    string
	apiKey   string
	http     *http.Client

	mu    sync.Mutex
	guard *Guard
}

// NewClient builds a client from options, applying defaults for anything
// left zero.
func NewClient(opts ClientOptions) *Client {
	baseURLs := splitBaseURLs(opts.BaseURLs)
	if len(baseURLs) == 0 {
		baseURLs = []string{normalizeBaseURL("http://localhost:11434/v1")}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURLs: baseURLs,
		model:    opts.Model,
		apiKey:   opts.APIKey,
		guard:    opts.Guard,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletion struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements Generator. Any failure, including an empty response,
// is reported as ErrUnavailable.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c == nil {
		return "", ErrUnavailable
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrUnavailable)
	}
	if !c.guardAllows() {
		return "", fmt.Errorf("%w: cooling down after repeated failures", ErrUnavailable)
	}

	payload, err := json.Marshal(chatPayload{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	failures := make([]string, 0, len(c.baseURLs))
	for _, baseURL := range c.baseURLs {
		text, err := c.generateAt(ctx, baseURL+"/chat/completions", payload)
		if err == nil {
			c.guardSuccess()
			return text, nil
		}
		failures = append(failures, fmt.Sprintf("%s (%v)", baseURL, err))
	}
	c.guardFailure()
	return "", fmt.Errorf("%w: %s", ErrUnavailable, strings.Join(failures, " | "))
}

func (c *Client) generateAt(ctx context.Context, endpoint string, payload []byte) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %v", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(request)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %s", resp.Status)
	}

	var decoded chatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %v", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("response missing choices")
	}
	content := decoded.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("response empty")
	}
	return content, nil
}

func (c *Client) guardAllows() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guard.Allow()
}

func (c *Client) guardFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.RecordFailure()
}

func (c *Client) guardSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.RecordSuccess()
}

func normalizeBaseURL(baseURL string) string {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return trimmed
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}

func splitBaseURLs(raw string) []string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r' || r == '\t' || r == ' '
	})
	out := make([]string, 0, len(tokens))
	seen := map[string]struct{}{}
	for _, token := range tokens {
		normalized := normalizeBaseURL(token)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
