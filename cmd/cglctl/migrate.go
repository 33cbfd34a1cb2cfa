package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cgl/internal/infrastructure/storage/postgres"
)

func migrateCmd(configPath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		Long: `Apply the SQL schema shipped with the binary. Files already recorded
in schema_migrations are skipped, so running migrate twice is safe.

Examples:
  cglctl migrate
  cglctl migrate --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if dryRun {
				files, err := postgres.Migrations()
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(out, "  %s %s\n", color.New(color.FgYellow).Sprint("SCHEMA "), f)
				}
				return nil
			}

			_, pool, err := connect(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.ApplySchema(cmd.Context(), postgres.NewTxManager(pool))
			if err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			for _, f := range applied {
				fmt.Fprintf(out, "  %s %s\n", color.New(color.FgGreen).Sprint("APPLIED"), f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list schema files without connecting")

	return cmd
}
