// Package completion is the request/response boundary to the locally hosted
// text-completion service. Calls are not retried here; failures surface to
// the caller per item.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnreachable indicates the completion endpoint did not answer the health
// probe. Batch stages check this once at entry and abort before processing
// any item.
var ErrUnreachable = errors.New("completion endpoint unreachable")

// Config holds client configuration.
type Config struct {
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Options override the client defaults for a single request. Zero values
// fall back to the configured defaults.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Client is a thin wrapper over the completion endpoint's HTTP API.
type Client struct {
	client   *resty.Client
	endpoint string
	model    string
	defaults Options
}

// NewClient creates a new completion client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(120 * time.Second)

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "http://localhost:1234"
	}

	return &Client{
		client:   client,
		endpoint: endpoint,
		model:    cfg.Model,
		defaults: Options{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature},
	}
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Ping probes the endpoint's model listing to verify reachability.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.endpoint + "/api/tags")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode())
	}
	return nil
}

// Complete sends a prompt to the completion endpoint and returns the trimmed
// completion text. A response without usable choices yields an empty string,
// not an error.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = c.defaults.MaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = c.defaults.Temperature
	}

	req := completionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	var resp completionResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint + "/v1/completions")
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("completion endpoint returned HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("completion endpoint returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != nil {
		return "", fmt.Errorf("completion endpoint error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}
