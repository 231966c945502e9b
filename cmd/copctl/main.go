// Command copctl is the operator CLI for a running copserver.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/theater-cop/internal/config"
	"github.com/talgya/theater-cop/internal/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

// cli carries state shared by subcommands.
type cli struct {
	apiURL  string
	verbose bool
	client  *watch.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "copctl",
		Short:         "Operator console for the INDOPACOM theater COP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if c.apiURL != "" {
				cfg.APIURL = c.apiURL
			}
			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			c.client = watch.NewClient(cfg.APIURL, cfg.Timeout)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "COP API base URL (overrides COP_API_URL)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.statusCmd(),
		c.briefCmd(),
		c.intelCmd(),
		c.watchCmd(),
		c.askCmd(),
	)
	return root
}
