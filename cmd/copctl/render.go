package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/talgya/theater-cop/internal/llm"
	"github.com/talgya/theater-cop/internal/theater"
	"github.com/talgya/theater-cop/internal/watch"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func renderStatus(w io.Writer, s *watch.Status) {
	fmt.Fprintln(w, bold(s.Name))
	llmState := red("OFFLINE (fallback text)")
	if s.LLMEnabled {
		llmState = green("ONLINE " + s.Model)
	}
	fmt.Fprintf(w, "  LLM:     %s\n", llmState)
	fmt.Fprintf(w, "  Nodes:   %d   Assets: %d   Routes: %d\n", s.Nodes, s.Assets, s.Routes)
	fmt.Fprintf(w, "  Up:      %s\n", gray(s.UpSince))
}

func renderBriefing(w io.Writer, b *watch.Briefing) {
	header := bold(fmt.Sprintf("[%s]", b.Panel))
	switch {
	case b.Fallback:
		header += " " + yellow("FALLBACK")
	case b.Cached:
		header += " " + gray("cached")
	}
	fmt.Fprintln(w, header)

	switch {
	case b.Sections != nil:
		renderSection(w, "OSINT", b.Sections.OSINT)
		renderSection(w, "SIGINT", b.Sections.SIGINT)
		renderSection(w, "HIMINT", b.Sections.HIMINT)
	case len(b.Lines) > 0:
		for _, l := range b.Lines {
			if l.Critical {
				fmt.Fprintln(w, red(l.Text))
			} else {
				fmt.Fprintln(w, l.Text)
			}
		}
	case len(b.Alerts) > 0:
		renderAlerts(w, b.GeneratedAt, b.Alerts)
	default:
		fmt.Fprintln(w, b.Text)
	}
}

func renderSection(w io.Writer, tag, text string) {
	body := text
	if text == llm.NoData {
		body = gray(text)
	}
	fmt.Fprintf(w, "%s\n  %s\n", cyan(tag), body)
}

func renderAlerts(w io.Writer, at time.Time, alerts []string) {
	stamp := theater.ZuluStamp(at)
	for _, a := range alerts {
		sev := watch.Triage(a)
		label := fmt.Sprintf("%-8s", sev)
		switch sev {
		case watch.SeverityCritical:
			label = red(label)
		case watch.SeverityWarning:
			label = yellow(label)
		case watch.SeverityWatch:
			label = cyan(label)
		default:
			label = gray(label)
		}
		fmt.Fprintf(w, "%s %s %s\n", gray(stamp), label, a)
	}
}

func renderReply(w io.Writer, r *watch.AdvisorReply) {
	if r.Greeting != "" {
		fmt.Fprintln(w, green(r.Greeting))
		fmt.Fprintln(w, gray("session "+r.SessionID))
	}
	if r.OK {
		fmt.Fprintln(w, r.Reply)
	} else {
		fmt.Fprintln(w, red(r.Reply))
	}
}
