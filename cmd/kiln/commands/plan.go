package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [OS/arch[@api]...]",
		Short: "Show the resolved options, toolchain and layout without building",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, _ := cmd.Flags().GetStringArray("option")
			plans, err := c.app.Plan(cmd.Context(), app.PlanOptions{
				ConfigPath: configPath(cmd),
				Targets:    args,
				Overrides:  overrides,
			})
			if err != nil {
				return err
			}
			for i, plan := range plans {
				if i > 0 {
					_, _ = cmd.OutOrStdout().Write([]byte("\n"))
				}
				printPlan(cmd.OutOrStdout(), plan)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayP("option", "o", nil, "Override a recipe option (name=value)")
	return cmd
}

func (c *CLI) newIdentityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identity OS/arch[@api]...",
		Short: "Show the identity a target is published under",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := c.app.Identity(args)
			if err != nil {
				return err
			}
			printIdentities(cmd.OutOrStdout(), reports)
			return nil
		},
	}
}

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the packages recorded in the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := c.app.List(cmd.Context(), configPath(cmd))
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
}
