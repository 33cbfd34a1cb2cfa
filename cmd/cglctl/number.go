package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cgl/internal/core/numbering"
)

func numberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "number",
		Short: "Work with visible numbers offline",
	}

	cmd.AddCommand(numberFormatCmd())
	cmd.AddCommand(numberNextCmd())
	cmd.AddCommand(numberParseCmd())

	return cmd
}

func numberFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <major> [minor]",
		Short: "Print the canonical form of a number",
		Long: `Print major and minor in canonical form.

Examples:
  cglctl number format 7        # 007.00
  cglctl number format 12 5     # 012.05`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			major, err := strconv.Atoi(args[0])
			if err != nil || major < 0 {
				return fmt.Errorf("major must be a non-negative integer: %q", args[0])
			}
			minor := 0
			if len(args) == 2 {
				minor, err = strconv.Atoi(args[1])
				if err != nil || minor < 0 || minor > numbering.MaxMinor {
					return fmt.Errorf("minor must be between 0 and %d: %q", numbering.MaxMinor, args[1])
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), numbering.Format(major, minor))
			return nil
		},
	}
}

func numberNextCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "next [last]",
		Short: "Print the number following last",
		Long: `Print the number the server would assign after last in a scope of the
given kind. Without last (or with a non-numeric one) the scope is empty.

Examples:
  cglctl number next                      # 000.00
  cglctl number next 005.00               # 010.00
  cglctl number next --kind record 12.5   # 022.05`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			last := ""
			if len(args) == 1 {
				last = args[0]
			}
			next, err := numbering.NextString(last, k.Step())
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgRed).Sprint("OVERFLOW"), next)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(numbering.KindBook), "book, chapter or record")

	return cmd
}

func numberParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <value>...",
		Short: "Show how values are read as visible numbers",
		Long: `Show the strict and lenient reading of each value. The API accepts only
strict values; lenient reading applies to legacy stored strings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				if v, ok := numbering.Parse(arg); ok {
					fmt.Fprintf(out, "%-12s %s %s (key %d)\n", arg, color.New(color.FgGreen).Sprint("OK     "), v, v.Hundredths())
					continue
				}
				if v, ok := numbering.ParseLenient(arg); ok {
					fmt.Fprintf(out, "%-12s %s %s\n", arg, color.New(color.FgYellow).Sprint("LENIENT"), v)
					continue
				}
				fmt.Fprintf(out, "%-12s %s\n", arg, color.New(color.FgRed).Sprint("INVALID"))
			}
			return nil
		},
	}
}

func parseKind(s string) (numbering.Kind, error) {
	switch k := numbering.Kind(s); k {
	case numbering.KindBook, numbering.KindChapter, numbering.KindRecord:
		return k, nil
	}
	return "", fmt.Errorf("unknown kind %q (book, chapter or record)", s)
}
