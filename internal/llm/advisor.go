// Tactical advisor: a persistent chat with a theater-aware system instruction.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const (
	// AdvisorGreeting opens every advisor session.
	AdvisorGreeting = "Tactical Advisor ONLINE. Secure channel established. Awaiting command."

	advisorLinkLost   = "Error: Connection lost. Re-establishing secure link..."
	advisorNoResponse = "Error: No response from theater AI."
)

const advisorSystem = `You are the INDOPACOM Tactical Advisor AI.
You provide concise, military-grade situational awareness.
The current nodes are Okinawa (Active), Guam (Warning - Supply delay), Darwin (Critical - Ammo shortage).
Format: Short sentences, tactical terminology. Use [SECURE CHANNEL] header for long replies.`

// Conversation is a multi-turn chat.
type Conversation interface {
	Send(ctx context.Context, message string) (string, error)
}

// ChatStarter opens conversations with a system instruction.
type ChatStarter interface {
	StartChat(ctx context.Context, system string) (Conversation, error)
}

// StartChat opens a Gemini chat session on the client's default model.
func (c *Client) StartChat(ctx context.Context, system string) (Conversation, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	chat, err := c.genai.Chats.Create(ctx, c.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &geminiChat{client: c, chat: chat}, nil
}

type geminiChat struct {
	client *Client
	chat   *genai.Chat
}

func (g *geminiChat) Send(ctx context.Context, message string) (string, error) {
	if err := g.client.reserve(); err != nil {
		return "", err
	}
	resp, err := g.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	logUsage(g.client.model, resp)
	return resp.Text(), nil
}

// Advisor is one operator's tactical advisor session. The underlying chat is
// opened on the first question; sends are serialized.
type Advisor struct {
	starter ChatStarter

	mu   sync.Mutex
	conv Conversation
}

// NewAdvisor creates an advisor session. A nil starter yields a session that
// always reports a lost link.
func NewAdvisor(starter ChatStarter) *Advisor {
	return &Advisor{starter: starter}
}

// Ask sends one message and returns the reply. Failures are reported in-band
// as the advisor's error lines; ok is false in that case.
func (a *Advisor) Ask(ctx context.Context, message string) (reply string, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conv == nil {
		if a.starter == nil {
			return advisorLinkLost, false
		}
		conv, err := a.starter.StartChat(ctx, advisorSystem)
		if err != nil {
			slog.Warn("advisor chat start failed", "error", err)
			return advisorLinkLost, false
		}
		a.conv = conv
	}

	text, err := a.conv.Send(ctx, message)
	if err != nil {
		slog.Warn("advisor send failed", "error", err)
		return advisorLinkLost, false
	}
	if strings.TrimSpace(text) == "" {
		return advisorNoResponse, false
	}
	return text, true
}
