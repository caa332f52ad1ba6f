package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Anthropic Messages API defaults.
const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = "claude-sonnet-4-20250514"
	AnthropicVersion        = "2023-06-01"

	defaultMaxTokens      = 4000
	defaultMaxAttempts    = 3
	defaultRequestTimeout = 60 * time.Second
	defaultInitialBackoff = time.Second

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 1 << 20
)

// AnthropicClient is a Completer backed by the Anthropic Messages API.
type AnthropicClient struct {
	baseURL        string
	apiKey         string
	model          string
	maxTokens      int
	maxAttempts    int
	initialBackoff time.Duration
	timeout        time.Duration
	httpClient     *http.Client
}

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(*AnthropicClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) AnthropicOption {
	return func(c *AnthropicClient) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithModel sets the model name.
func WithModel(model string) AnthropicOption {
	return func(c *AnthropicClient) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) AnthropicOption {
	return func(c *AnthropicClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxAttempts sets how many times a retryable request is attempted.
func WithMaxAttempts(n int) AnthropicOption {
	return func(c *AnthropicClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithInitialBackoff sets the first retry delay. Later delays grow exponentially.
func WithInitialBackoff(d time.Duration) AnthropicOption {
	return func(c *AnthropicClient) {
		if d > 0 {
			c.initialBackoff = d
		}
	}
}

// WithRequestTimeout bounds each attempt.
func WithRequestTimeout(d time.Duration) AnthropicOption {
	return func(c *AnthropicClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewAnthropicClient creates a client. It returns ErrNoAPIKey when apiKey is empty.
func NewAnthropicClient(apiKey string, opts ...AnthropicOption) (*AnthropicClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &AnthropicClient{
		baseURL:        DefaultAnthropicBaseURL,
		apiKey:         apiKey,
		model:          DefaultAnthropicModel,
		maxTokens:      defaultMaxTokens,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		timeout:        defaultRequestTimeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError describes a non-success response. It wraps ErrStatus.
type StatusError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d", ErrStatus, e.StatusCode)
	}
	return fmt.Sprintf("%s: %d %s: %s", ErrStatus, e.StatusCode, e.Type, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// retryable reports whether the status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Complete sends prompt as a single user message at temperature 0 and returns
// the concatenated text blocks of the answer. Rate limits, server errors and
// transport errors are retried with exponential backoff.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1)), ctx)

	var text string
	err = backoff.Retry(func() error {
		t, err := c.send(ctx, body)
		if err != nil {
			return err
		}
		text = t
		return nil
	}, retry)
	if err != nil {
		return "", err
	}
	return text, nil
}

// send performs one attempt. Errors that must not be retried are wrapped with backoff.Permanent.
func (c *AnthropicClient) send(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", AnthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var apiErr apiErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil {
			statusErr.Type = apiErr.Error.Type
			statusErr.Message = apiErr.Error.Message
		}
		if retryable(resp.StatusCode) {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	var b strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", backoff.Permanent(ErrEmptyCompletion)
	}
	return b.String(), nil
}
