package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build trees and packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			packages, _ := cmd.Flags().GetBool("packages")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{ConfigPath: configPath(cmd)}

			switch {
			case all:
				opts.Build = true
				opts.Packages = true
			case packages:
				opts.Packages = true
			default:
				// Default behavior: clean build trees only
				opts.Build = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("packages", "p", false, "Remove recorded packages, their archives and the package store")
	cmd.Flags().BoolP("all", "a", false, "Remove build trees and packages")

	return cmd
}
