package llm

import "strings"

// AnalysisLine is one rendered line of the predictive theater assessment.
type AnalysisLine struct {
	Text     string `json:"text"`
	Critical bool   `json:"critical"`
}

// AnalysisLines splits an assessment into display lines, flagging those that
// open with CRITICAL or RISK.
func AnalysisLines(text string) []AnalysisLine {
	raw := strings.Split(text, "\n")
	lines := make([]AnalysisLine, len(raw))
	for i, l := range raw {
		lines[i] = AnalysisLine{
			Text:     l,
			Critical: strings.HasPrefix(l, "CRITICAL") || strings.HasPrefix(l, "RISK"),
		}
	}
	return lines
}

// TickerAlerts splits flash traffic on "//" separators.
func TickerAlerts(text string) []string {
	var alerts []string
	for _, part := range strings.Split(text, "//") {
		if a := strings.TrimSpace(part); a != "" {
			alerts = append(alerts, a)
		}
	}
	return alerts
}
