// Package llm provides the generator oracle used by the correction loop:
// a small client for a Gemini-compatible generateContent endpoint plus
// the JSON extraction helpers that pull structured payloads out of its
// free-text responses.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/UnfitBeard/prompt-eval/utils"
)

// Generator is the fallible, non-deterministic text oracle. The system
// prompt carries instructions, the user prompt the material to work on.
// Implementations must be safe for concurrent independent calls.
type Generator interface {
	Generate(ctx context.Context, system, user string, opts ...GenerateOption) (string, error)
}

// GenerateConfig holds per-call sampling and budget settings.
type GenerateConfig struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type GenerateOption func(*GenerateConfig)

func WithTemperature(t float64) GenerateOption {
	return func(c *GenerateConfig) { c.Temperature = t }
}

func WithMaxTokens(n int) GenerateOption {
	return func(c *GenerateConfig) { c.MaxTokens = n }
}

// WithTimeout bounds a single call. The evaluation path uses a shorter
// budget than the improve path.
func WithTimeout(d time.Duration) GenerateOption {
	return func(c *GenerateConfig) { c.Timeout = d }
}

// Client talks to a Gemini-style generateContent endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	client     *http.Client
	logger     utils.Logger
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

func WithRateLimit(every time.Duration, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(every), burst) }
}

func WithRetries(maxRetries int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

func NewClient(endpoint, model, apiKey string, logger utils.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		client:     &http.Client{},
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		maxRetries: 2,
		retryDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, system, user string, opts ...GenerateOption) (string, error) {
	cfg := &GenerateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", NewLLMError(ErrorTypeRateLimit, "rate limiter wait failed", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		c.logger.Debug("generating", "model", c.model, "attempt", attempt+1, "temperature", cfg.Temperature)

		result, err := c.attemptGenerate(ctx, system, user, cfg)
		if err == nil {
			return result, nil
		}
		lastErr = err

		c.logger.Warn("generation attempt failed", "error", err, "attempt", attempt+1)
		if attempt < c.maxRetries {
			if err := c.wait(ctx); err != nil {
				return "", NewLLMError(ErrorTypeTimeout, "cancelled while waiting to retry", err)
			}
		}
	}

	return "", fmt.Errorf("failed to generate after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryDelay):
		return nil
	}
}

func (c *Client) attemptGenerate(ctx context.Context, system, user string, cfg *GenerateConfig) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: user}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxTokens,
		},
	}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewLLMError(ErrorTypeRequest, "failed to encode request", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", NewLLMError(ErrorTypeRequest, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", NewLLMError(ErrorTypeTimeout, "call exceeded its budget", ctx.Err())
		}
		return "", NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewLLMError(ErrorTypeResponse, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("API error", "status", resp.StatusCode, "body", string(body))
		return "", NewLLMError(ErrorTypeAPI, fmt.Sprintf("API error: status code %d", resp.StatusCode), nil)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}
	if parsed.Error != nil {
		return "", NewLLMError(ErrorTypeAPI, parsed.Error.Message, nil)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", NewLLMError(ErrorTypeResponse, "empty response", nil)
	}

	var out bytes.Buffer
	for _, p := range parsed.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return out.String(), nil
}
