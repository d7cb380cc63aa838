package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archivist/internal/schedule"
	"archivist/pkg/requestcontext"
)

// ScheduleCmd returns the retention schedule command group.
func ScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage the retention schedule (series and subseries)",
	}
	cmd.AddCommand(scheduleImportCmd())
	return cmd
}

func scheduleImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import series and subseries from a YAML catalog",
		Long: `Import a YAML retention catalog. Series and subseries whose code already
exists are skipped, so importing the same file twice is harmless.

Example catalog:

  series:
    - code: "100"
      name: Contracts
      management_years: 2
      central_years: 3
      disposition: destruction
      subseries:
        - code: "100.1"
          name: Leases`,
		Args: cobra.ExactArgs(1),
		RunE: runScheduleImport,
	}
	cmd.Flags().String("operator", "", "Operator recorded in the audit log (defaults to system)")
	return cmd
}

func runScheduleImport(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	catalog, err := schedule.ParseCatalog(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if operator, _ := cmd.Flags().GetString("operator"); operator != "" {
		ctx = requestcontext.WithActor(ctx, operator)
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.schedule.Import(ctx, catalog)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
}
