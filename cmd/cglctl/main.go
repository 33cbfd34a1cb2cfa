// Package main is cglctl, the CGL admin CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "cglctl",
		Short:   "cglctl - administration tool for the CGL backend",
		Version: version,
		Long: `cglctl applies the database schema, seeds users and works with
visible numbers offline.

Configuration is read like the server does: defaults, then the YAML file
given by --config or $CGL_CONFIG, then environment variables.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default $CGL_CONFIG)")

	cmd.AddCommand(migrateCmd(&configPath))
	cmd.AddCommand(seedUserCmd(&configPath))
	cmd.AddCommand(numberCmd())

	return cmd
}
