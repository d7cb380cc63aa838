package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "archivist",
		Short: "Records lifecycle and allocation engine",
		Long: `archivist files case files into boxes, folders and packages, numbers
documents, and moves case files through their retention phases.

Configuration is read from the file given by --config, then from
ARCHIVIST_* environment variables.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(RecomputeCmd())
	rootCmd.AddCommand(ScheduleCmd())
	rootCmd.AddCommand(TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
