package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/meetsync/libs/runtime"
)

var (
	verbose bool
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meetctl",
		Short: "Find common meeting times from the command line",
		Long: `meetctl runs the meeting slot search against a YAML roster, or asks a
running meeting-service over gRPC.

Examples:
  meetctl suggest --roster team.yaml --date 2024-06-10 --duration 45
  meetctl suggest --roster team.yaml --date 2024-06-10 --remote localhost:9090
  meetctl timezones`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.AddCommand(newSuggestCmd(), newTimezonesCmd(), newEventsCmd())
	return root
}

func main() {
	ctx, stop := runtime.SignalContext()
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
