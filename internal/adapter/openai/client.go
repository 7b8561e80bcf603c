// Package openai provides a model gateway for OpenAI-compatible
// chat-completion APIs (DeepSeek, Groq, OpenAI).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/codeweaver-dev/codeweaver/internal/port/modelgateway"
	"github.com/codeweaver-dev/codeweaver/internal/resilience"
)

const (
	defaultTimeout = 60 * time.Second
	maxTries       = 3
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	name          string
	settings      modelgateway.Settings
	httpClient    *http.Client
	breaker       *resilience.Breaker
	retryInterval time.Duration
}

var _ modelgateway.Gateway = (*Client)(nil)

// NewClient creates a gateway client for the named provider.
func NewClient(name string, st modelgateway.Settings) *Client {
	return &Client{
		name:          name,
		settings:      st,
		httpClient:    &http.Client{},
		retryInterval: 500 * time.Millisecond,
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Name returns the provider driver name.
func (c *Client) Name() string {
	return c.name
}

// Configured reports whether an API key is set for this provider.
func (c *Client) Configured() bool {
	return c.settings.APIKey != ""
}

// Complete sends one chat completion and returns the model's raw text output.
func (c *Client) Complete(ctx context.Context, prompt modelgateway.Prompt, opts modelgateway.Options) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: c.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: c.settings.Temperature,
		MaxTokens:   c.settings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := c.doRequest(ctx, body)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.name)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	call := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.settings.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(modelgateway.ErrTimeout)
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		switch {
		case resp.StatusCode < 400:
			return data, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			// Transient; retried with backoff.
			return nil, fmt.Errorf("%s API error %d: %s", c.name, resp.StatusCode, truncate(data))
		default:
			return nil, backoff.Permanent(fmt.Errorf("%w: %s API error %d: %s", modelgateway.ErrRejected, c.name, resp.StatusCode, truncate(data)))
		}
	}

	run := func() ([]byte, error) {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = c.retryInterval
		return backoff.Retry(ctx, call,
			backoff.WithBackOff(bo),
			backoff.WithMaxTries(maxTries))
	}

	var result []byte
	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(func() error {
			var callErr error
			result, callErr = run()
			return callErr
		})
	} else {
		result, err = run()
	}
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// classify maps transport failures onto the gateway error sentinels.
// Anything that is not an explicit provider rejection counts as a timeout,
// including exhausted retries and an open circuit.
func classify(err error) error {
	if errors.Is(err, modelgateway.ErrRejected) || errors.Is(err, modelgateway.ErrTimeout) {
		return err
	}
	return fmt.Errorf("%w: %v", modelgateway.ErrTimeout, err)
}

func truncate(data []byte) string {
	const max = 512
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
