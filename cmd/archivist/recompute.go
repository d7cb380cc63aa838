package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"archivist/internal/retention"
	"archivist/pkg/requestcontext"
)

// RecomputeCmd returns the one-shot retention run command.
func RecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Run the retention batch once and print its report",
		Long: `Run all retention stages once, as the daily scheduler would, and print
the run report as JSON.

The run takes the same cluster-wide lease as the scheduler; it fails when
another run holds it.

Usage:
  archivist recompute                    # evaluate as of today (UTC)
  archivist recompute --date 2025-01-31  # evaluate as of a given day`,
		RunE: runRecompute,
	}
	cmd.Flags().String("date", "", "Evaluation day (YYYY-MM-DD), defaults to today in UTC")
	return cmd
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	ctx := requestcontext.WithActor(cmd.Context(), retention.SchedulerActor)

	today := requestcontext.Today(ctx)
	if raw, _ := cmd.Flags().GetString("date"); strings.TrimSpace(raw) != "" {
		today, err = time.Parse(time.DateOnly, strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.scheduler.RunNow(ctx, today)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
