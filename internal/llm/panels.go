// Panel narratives: fixed prompt templates per dashboard panel, each with a
// canned fallback shown when generation fails.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Panel names a dashboard text panel.
type Panel string

const (
	PanelAnalysis     Panel = "analysis"
	PanelHealth       Panel = "health"
	PanelIntel        Panel = "intel"
	PanelSupplyRisk   Panel = "supply-risk"
	PanelTransactions Panel = "transactions"
	PanelMission      Panel = "mission"
	PanelComms        Panel = "comms"
	PanelTicker       Panel = "ticker"
)

// PromptArgs carries the few panel inputs that vary per request.
type PromptArgs struct {
	Hours      int      // analysis: T+ offset
	Mission    string   // mission: operation name
	Objectives []string // mission: objectives
}

type panelSpec struct {
	temperature float32
	topP        float32 // 0 leaves top-p at the model default
	fallback    string
	prompt      func(PromptArgs) string
}

var panels = map[Panel]panelSpec{
	PanelAnalysis: {
		temperature: 0.7,
		topP:        0.95,
		fallback:    "ANALYSIS FAILED: SECURE CHANNEL TIMEOUT. RETRYING...",
		prompt: func(a PromptArgs) string {
			return fmt.Sprintf(`Perform a military theater logistics risk analysis for T+%d hours in the INDOPACOM region.
Nodes: Okinawa (Hub), Guam (APS), Darwin (Base).
Provide a concise military report format (SITREP).`, a.Hours)
		},
	},
	PanelHealth: {
		temperature: 0.6,
		fallback:    "PROGNOSIS UNAVAILABLE: DATA FEED DISRUPTED.",
		prompt: constPrompt(`Provide a 7-day predictive health prognosis for the INDOPACOM theater.
Analyze: Readiness fatigue, resource burn rates, and infrastructure stability.
Format: Use bullet points. Keep it professional and diagnostic.`),
	},
	PanelIntel: {
		temperature: 0.8,
		fallback:    "INTEL FEED OFFLINE. LOCAL ENCRYPTION ACTIVE.",
		prompt: constPrompt(`Generate a structured tactical intelligence briefing for the INDOPACOM theater.
Divide the response into three distinct sections:
1. OSINT (Open Source Intelligence): Focus on regional media and social sentiment.
2. SIGINT (Signals Intelligence): Focus on communication intercepts and radar anomalies.
3. HIMINT (High-level Imagery/Tactical Intelligence): Focus on satellite observations and field reports.
Format: Concise, professional, and formatted for a command screen.`),
	},
	PanelSupplyRisk: {
		temperature: 0.8,
		fallback:    "RISK ASSESSMENT FAILED. MONITORING MANUAL FEEDS...",
		prompt: constPrompt(`Perform a tactical supply chain risk assessment for INDOPACOM.
Focus on maritime choke points (Malacca, Sunda, Lombok) and aerial corridor vulnerabilities.
Identify 3 high-probability disruptive events and their mission impact.
Format: Use short, punchy paragraphs with tactical headings.`),
	},
	PanelTransactions: {
		temperature: 0.7,
		fallback:    "TRANSACTION ANALYSIS OFFLINE. LOCAL CACHE ACTIVE.",
		prompt: constPrompt(`Analyze INDOPACOM logistics flow and summarize the 3 most strategic supply movements currently in progress.
Include impacts on combat readiness for Class V (Ammunition) and Class III (Fuel).
Use a brief, high-level summary format for a theater commander.`),
	},
	PanelMission: {
		temperature: 0.75,
		fallback:    "STRATEGY REVIEW UNAVAILABLE. PROCEED WITH CAUTION.",
		prompt: func(a PromptArgs) string {
			var b strings.Builder
			fmt.Fprintf(&b, "Review the proposed mission: %q.\n", a.Mission)
			fmt.Fprintf(&b, "Objectives: %s.\n", strings.Join(a.Objectives, ", "))
			b.WriteString("Evaluate strategic viability, logistics sustainment risks, and potential operational counter-moves.\n")
			b.WriteString("Provide 3 tactical recommendations to improve success probability.\n")
			b.WriteString("Format: Professional theater command tone.")
			return b.String()
		},
	},
	PanelComms: {
		temperature: 0.7,
		fallback:    "TRAFFIC ANALYSIS INCONCLUSIVE. EMCON BRAVO MAINTAINED.",
		prompt: constPrompt(`Analyze theater communication patterns.
Identify 2 potential signals intelligence (SIGINT) anomalies or traffic density shifts.
Recommend a protocol level (e.g., Emission Control / EMCON status).
Keep it very short and professional.`),
	},
	PanelTicker: {
		temperature: 0.8,
		fallback:    "// CRITICAL LOW: CLASS V @ DARWIN NODE (40% STOCK) // INTERCEPT DETECTED SECTOR 7 // ALT ROUTE BRAVO-2 ACTIVATED //",
		prompt:      constPrompt("Generate 5 critical military flash alerts for a simulated INDOPACOM COP. Format as single line strings separated by //."),
	},
}

func constPrompt(s string) func(PromptArgs) string {
	return func(PromptArgs) string { return s }
}

// Panels lists every known panel in display order.
func Panels() []Panel {
	return []Panel{
		PanelAnalysis, PanelHealth, PanelIntel, PanelSupplyRisk,
		PanelTransactions, PanelMission, PanelComms, PanelTicker,
	}
}

// ParsePanel validates a panel name.
func ParsePanel(name string) (Panel, error) {
	p := Panel(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := panels[p]; !ok {
		return "", fmt.Errorf("unknown panel %q", name)
	}
	return p, nil
}

// Fallback returns the text a panel shows when generation fails.
func (p Panel) Fallback() string {
	return panels[p].fallback
}

// BuildRequest renders the panel's prompt and sampling parameters.
func BuildRequest(p Panel, args PromptArgs) (Request, error) {
	spec, ok := panels[p]
	if !ok {
		return Request{}, fmt.Errorf("unknown panel %q", p)
	}
	req := Request{
		Prompt:      spec.prompt(args),
		Temperature: genai.Ptr(spec.temperature),
	}
	if spec.topP > 0 {
		req.TopP = genai.Ptr(spec.topP)
	}
	return req, nil
}

// Briefing is the text a panel displays.
type Briefing struct {
	Panel       Panel     `json:"panel"`
	Text        string    `json:"text"`
	Fallback    bool      `json:"fallback"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Fetch generates a panel's narrative. It never fails: any error (no client,
// transport failure, rate limit, empty text) is logged and the panel's
// fallback text is returned with Fallback set.
func Fetch(ctx context.Context, gen Generator, p Panel, args PromptArgs) Briefing {
	b := Briefing{Panel: p, GeneratedAt: time.Now().UTC()}

	req, err := BuildRequest(p, args)
	if err != nil {
		slog.Error("panel request", "panel", p, "error", err)
		b.Fallback = true
		return b
	}

	if gen == nil {
		b.Text, b.Fallback = p.Fallback(), true
		return b
	}

	text, err := gen.Generate(ctx, req)
	if err != nil {
		slog.Warn("panel generation failed, using fallback", "panel", p, "error", err)
		b.Text, b.Fallback = p.Fallback(), true
		return b
	}

	b.Text = text
	return b
}
