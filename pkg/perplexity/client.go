// Package perplexity is a client for the Perplexity chat completions API.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/utils"
)

const (
	DefaultEndpoint       = "https://api.perplexity.ai/chat/completions"
	DefaultModel          = "sonar"
	DefaultResponseFormat = "text"

	// MissingKey is sent as the bearer token when no API key is configured.
	MissingKey = "no key found"

	// maxErrorBody bounds how much of a failed response body is kept.
	maxErrorBody = 64 * 1024
)

// Config configures a Client.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string

	// ResponseFormat is sent as response_format.type. Empty omits the field.
	ResponseFormat string

	// Timeout bounds each call. Zero means no client timeout.
	Timeout time.Duration

	Stream bool
}

// Client issues chat completion calls. It is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client. Empty endpoint, model and key fall back to defaults.
func New(config Config, logger *zap.Logger) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.APIKey == "" {
		config.APIKey = MissingKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Model returns the configured default model.
func (c *Client) Model() string {
	return c.config.Model
}

// Complete sends one completion request and returns the decoded response.
// Transport failures, non-2xx statuses and undecodable bodies are errors.
func (c *Client) Complete(ctx context.Context, req Request) (*CompletionResponse, error) {
	body := c.buildRequest(req)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", utils.UserAgent())
	if body.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	c.logger.Debug("sending completion request",
		zap.String("endpoint", c.config.Endpoint),
		zap.String("model", body.Model),
		zap.Int("message_count", len(body.Messages)),
		zap.Bool("stream", body.Stream),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out *CompletionResponse
	if body.Stream {
		out, err = readStream(resp.Body, req.OnDelta)
	} else {
		out, err = decodeResponse(resp.Body)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("completion settled",
		zap.String("model", body.Model),
		zap.Int("choices", len(out.Choices)),
		zap.Int("citations", len(out.Citations)),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

func (c *Client) buildRequest(req Request) *CompletionRequest {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	body := &CompletionRequest{
		Model:    model,
		Messages: req.Messages,
		Stream:   c.config.Stream,
	}
	if body.Messages == nil {
		body.Messages = []llm.Message{}
	}
	if c.config.ResponseFormat != "" {
		body.ResponseFormat = &ResponseFormat{Type: c.config.ResponseFormat}
	}

	return body
}

func decodeResponse(r io.Reader) (*CompletionResponse, error) {
	out := &CompletionResponse{}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}
