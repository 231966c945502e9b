// Package llm provides the Gemini client used for narrative panels and the
// tactical advisor, the per-panel prompt catalogue, and the parsers that turn
// generated text into display sections.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

var (
	// ErrNotConfigured is returned when no API key was supplied.
	ErrNotConfigured = errors.New("LLM client not configured")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response")
)

// Request is a one-shot text generation request.
type Request struct {
	Model       string // Empty selects the client default.
	System      string
	Prompt      string
	Temperature *float32
	TopP        *float32
}

// Generator produces text for a single prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config configures a Client.
type Config struct {
	APIKey    string
	Model     string
	MaxPerMin int

	// BaseURL and HTTPClient override the Gemini endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the Gemini API for panel narratives and advisor chats.
type Client struct {
	genai *genai.Client
	model string

	// Rate limiting: max calls per minute.
	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// NewClient creates a Gemini client.
// Returns nil, nil if the API key is empty (LLM features disabled).
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxPerMin <= 0 {
		cfg.MaxPerMin = 20
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		genai:     gc,
		model:     cfg.Model,
		maxPerMin: cfg.MaxPerMin,
	}, nil
}

// Enabled returns true if the client has a live Gemini connection.
func (c *Client) Enabled() bool {
	return c != nil && c.genai != nil
}

// Model returns the default model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// reserve takes one call from the per-minute budget.
func (c *Client) reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		return fmt.Errorf("rate limit exceeded (%d calls/min)", c.maxPerMin)
	}
	c.callCount++
	return nil
}

// Generate sends a prompt to Gemini and returns the response text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	if err := c.reserve(); err != nil {
		return "", err
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	logUsage(model, resp)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func logUsage(model string, resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	slog.Debug("gemini call",
		"model", model,
		"input_tokens", resp.UsageMetadata.PromptTokenCount,
		"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
	)
}
