package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/meetsync/libs/config"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/grpcserver"
)

type suggestOptions struct {
	roster   string
	date     string
	duration int
	with     []int64
	remote   string
	token    string
	output   string
	timeout  time.Duration
}

func newSuggestCmd() *cobra.Command {
	opts := suggestOptions{}
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest up to five common start times on a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuggest(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.roster, "roster", "r", "roster.yaml", "YAML roster of participants")
	cmd.Flags().StringVarP(&opts.date, "date", "d", "", "date to search, YYYY-MM-DD (UTC day)")
	cmd.Flags().IntVar(&opts.duration, "duration", availability.DefaultDurationMinutes, "meeting length in minutes")
	cmd.Flags().Int64SliceVar(&opts.with, "with", nil, "only include these participant ids (the requester always attends)")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "ask a meeting-service gRPC endpoint (host:port) instead of searching locally")
	cmd.Flags().StringVar(&opts.token, "token", config.String("MEETSYNC_TOKEN", ""), "bearer token for --remote (env MEETSYNC_TOKEN)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "remote call timeout")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func runSuggest(ctx context.Context, out io.Writer, opts suggestOptions) error {
	if opts.output != "text" && opts.output != "json" {
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	date, err := availability.ParseDate(opts.date)
	if err != nil {
		return err
	}
	if err := availability.ValidateDuration(opts.duration); err != nil {
		return err
	}
	roster, err := LoadRoster(opts.roster)
	if err != nil {
		return err
	}

	var slots []time.Time
	if opts.remote != "" {
		slots, err = suggestRemote(ctx, roster, opts)
	} else {
		slots, err = suggestLocal(roster, date, opts)
	}
	if err != nil {
		return err
	}
	return printSlots(out, opts.output, slots)
}

func suggestLocal(roster Roster, date time.Time, opts suggestOptions) ([]time.Time, error) {
	participants, err := roster.Resolve(opts.with)
	if err != nil {
		return nil, err
	}
	logger.Debug("searching locally", "participants", len(participants), "date", opts.date, "duration_minutes", opts.duration)
	return availability.FindSlots(date, opts.duration, participants), nil
}

func suggestRemote(ctx context.Context, roster Roster, opts suggestOptions) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	client, err := grpcserver.NewClient(ctx, opts.remote, opts.token)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.remote, err)
	}
	defer client.Close()

	ids := opts.with
	if ids == nil {
		ids = roster.IDs()
	}
	logger.Debug("asking remote", "addr", opts.remote, "requester", roster.Requester, "participants", ids)
	return client.SuggestTimes(ctx, roster.Requester, ids, opts.date, opts.duration)
}

func printSlots(out io.Writer, format string, slots []time.Time) error {
	formatted := make([]string, 0, len(slots))
	for _, s := range slots {
		formatted = append(formatted, availability.FormatSlot(s))
	}
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(formatted)
	}
	if len(formatted) == 0 {
		_, err := fmt.Fprintln(out, "no common time found")
		return err
	}
	for _, s := range formatted {
		if _, err := fmt.Fprintln(out, s); err != nil {
			return err
		}
	}
	return nil
}
