// Package watch is the operator-side client for a running COP server.
// It reads the picture and panel briefings over the HTTP API and tracks
// which flash alerts an operator has already seen.
package watch

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

	"github.com/talgya/theater-cop/internal/llm"
)

// Status mirrors GET /api/v1/status.
type Status struct {
	Name       string      `json:"name"`
	Pages      int         `json:"pages"`
	Nodes      int         `json:"nodes"`
	Assets     int         `json:"assets"`
	Routes     int         `json:"routes"`
	LLMEnabled bool        `json:"llm_enabled"`
	Model      string      `json:"model"`
	Panels     []llm.Panel `json:"panels"`
	StartedAt  time.Time   `json:"started_at"`
	UpSince    string      `json:"up_since"`
}

// Briefing mirrors a panel briefing response.
type Briefing struct {
	llm.Briefing
	Cached   bool               `json:"cached"`
	Lines    []llm.AnalysisLine `json:"lines,omitempty"`
	Sections *llm.Sections      `json:"sections,omitempty"`
	Alerts   []string           `json:"alerts,omitempty"`
}

// AdvisorReply mirrors POST /api/v1/advisor.
type AdvisorReply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	OK        bool   `json:"ok"`
	Greeting  string `json:"greeting,omitempty"`
}

// Client fetches COP state from the API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client targeting the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Status fetches the service summary.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.getJSON(ctx, "/api/v1/status", &s); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	return &s, nil
}

// Briefing fetches one panel's narrative. hours is only sent for the
// analysis panel.
func (c *Client) Briefing(ctx context.Context, panel llm.Panel, hours int) (*Briefing, error) {
	path := "/api/v1/briefing/" + string(panel)
	if panel == llm.PanelAnalysis && hours > 0 {
		path += fmt.Sprintf("?t=%d", hours)
	}
	var b Briefing
	if err := c.getJSON(ctx, path, &b); err != nil {
		return nil, fmt.Errorf("fetch %s briefing: %w", panel, err)
	}
	return &b, nil
}

// Intel fetches the parsed intelligence feed.
func (c *Client) Intel(ctx context.Context) (*Briefing, error) {
	var b Briefing
	if err := c.getJSON(ctx, "/api/v1/intel", &b); err != nil {
		return nil, fmt.Errorf("fetch intel: %w", err)
	}
	return &b, nil
}

// Ticker fetches the current flash alerts.
func (c *Client) Ticker(ctx context.Context) (*Briefing, error) {
	var b Briefing
	if err := c.getJSON(ctx, "/api/v1/ticker", &b); err != nil {
		return nil, fmt.Errorf("fetch ticker: %w", err)
	}
	return &b, nil
}

// Ask sends one message to the tactical advisor. An empty sessionID opens a
// new session.
func (c *Client) Ask(ctx context.Context, sessionID, message string) (*AdvisorReply, error) {
	body := map[string]string{"message": message}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	var r AdvisorReply
	if err := c.postJSON(ctx, "/api/v1/advisor", body, &r); err != nil {
		return nil, fmt.Errorf("ask advisor: %w", err)
	}
	return &r, nil
}

// WaitReady polls the status endpoint with exponential backoff until it
// responds or ctx ends.
func (c *Client) WaitReady(ctx context.Context, initial, maxBackoff time.Duration) error {
	backoff := initial
	for {
		_, err := c.Status(ctx)
		if err == nil {
			return nil
		}
		slog.Debug("COP API not ready, retrying", "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("COP API not ready: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// getJSON GETs a path and decodes the JSON response into target.
func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, path, target)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, target)
}

func (c *Client) do(req *http.Request, path string, target any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s returned %d: %s", req.Method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
