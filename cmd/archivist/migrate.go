package main

import (
	"github.com/spf13/cobra"

	"archivist/internal/platform/postgres"
)

// MigrateCmd returns the schema migration command.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			return postgres.Migrate(cfg.Database.URL, log)
		},
	}
}
