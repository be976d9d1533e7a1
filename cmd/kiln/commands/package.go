package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newPackageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package [OS/arch[@api]...]",
		Short: "Build and assemble packages for the given targets",
		Long: "Build and assemble packages for the given targets.\n" +
			"Without arguments every target listed in the recipe is packaged.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, _ := cmd.Flags().GetStringArray("option")
			force, _ := cmd.Flags().GetBool("force")
			archive, _ := cmd.Flags().GetString("archive")
			jobs, _ := cmd.Flags().GetInt("jobs")
			verbose, _ := cmd.Flags().GetBool("verbose")

			opts := app.PackageOptions{
				ConfigPath: configPath(cmd),
				Targets:    args,
				Overrides:  overrides,
				Force:      force,
				Archive:    archive,
				Jobs:       jobs,
			}
			if verbose {
				opts.Output = cmd.ErrOrStderr()
			}

			results, err := c.app.Package(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringArrayP("option", "o", nil, "Override a recipe option (name=value)")
	cmd.Flags().BoolP("force", "f", false, "Discard existing package roots and rebuild")
	cmd.Flags().String("archive", "", "Also write an archive next to each package (zst, xz, gz)")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of concurrent builds (default: number of CPUs)")
	cmd.Flags().BoolP("verbose", "v", false, "Stream build tool output to stderr")
	return cmd
}
