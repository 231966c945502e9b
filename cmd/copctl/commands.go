package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/theater-cop/internal/llm"
	"github.com/talgya/theater-cop/internal/watch"
)

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.client.Status(cmd.Context())
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func (c *cli) briefCmd() *cobra.Command {
	var hours int
	cmd := &cobra.Command{
		Use:       "brief <panel>",
		Short:     "Fetch a panel briefing",
		Long:      "Fetch a panel briefing. Panels: " + panelList() + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: panelNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := llm.ParsePanel(args[0])
			if err != nil {
				return err
			}
			b, err := c.client.Briefing(cmd.Context(), panel, hours)
			if err != nil {
				return err
			}
			renderBriefing(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().IntVarP(&hours, "hours", "t", 0, "analysis offset T+hours (0-48)")
	return cmd
}

func (c *cli) intelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "intel",
		Short: "Show the OSINT / SIGINT / HIMINT feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.client.Intel(cmd.Context())
			if err != nil {
				return err
			}
			renderBriefing(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the flash alert ticker, printing new alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %s", interval)
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if err := c.client.WaitReady(ctx, 2*time.Second, 30*time.Second); err != nil {
				return err
			}

			seen := watch.NewSeen()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				b, err := c.client.Ticker(ctx)
				if err != nil {
					fmt.Fprintln(out, red("ticker:"), err)
				} else {
					renderAlerts(out, time.Now(), seen.Fresh(b.Alerts))
				}

				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "poll interval")
	return cmd
}

func (c *cli) askCmd() *cobra.Command {
	var session string
	var interactive bool
	cmd := &cobra.Command{
		Use:   "ask [message...]",
		Short: "Ask the tactical advisor",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !interactive {
				if len(args) == 0 {
					return fmt.Errorf("message required (or use -i)")
				}
				r, err := c.client.Ask(cmd.Context(), session, strings.Join(args, " "))
				if err != nil {
					return err
				}
				renderReply(out, r)
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(out, cyan("> "))
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					fmt.Fprint(out, cyan("> "))
					continue
				}
				r, err := c.client.Ask(cmd.Context(), session, line)
				if err != nil {
					return err
				}
				session = r.SessionID
				renderReply(out, r)
				fmt.Fprint(out, cyan("> "))
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "continue an advisor session")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read questions from stdin")
	return cmd
}

func panelNames() []string {
	var names []string
	for _, p := range llm.Panels() {
		names = append(names, string(p))
	}
	return names
}

func panelList() string {
	return strings.Join(panelNames(), ", ")
}
