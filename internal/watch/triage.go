package watch

import "strings"

// Severity grades a flash alert for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWatch
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityWarning:
		return "WARNING"
	case SeverityWatch:
		return "WATCH"
	default:
		return "INFO"
	}
}

// Keyword tiers, checked most severe first.
var severityKeywords = []struct {
	level Severity
	words []string
}{
	{SeverityCritical, []string{"CRITICAL", "FLASH", "HOSTILE", "SHORTAGE", "ATTACK"}},
	{SeverityWarning, []string{"INTERCEPT", "DELAY", "WARNING", "DISRUPT", "LOW"}},
	{SeverityWatch, []string{"REROUTE", "ALT ROUTE", "ANOMAL", "MONITOR"}},
}

// Triage grades an alert by keyword. Deterministic and free; no LLM call.
func Triage(alert string) Severity {
	upper := strings.ToUpper(alert)
	for _, tier := range severityKeywords {
		for _, w := range tier.words {
			if strings.Contains(upper, w) {
				return tier.level
			}
		}
	}
	return SeverityInfo
}
