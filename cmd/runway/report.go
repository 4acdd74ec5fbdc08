package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runwayhq/runway/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report generation commands",
	}

	cmd.AddCommand(newReportInvestorCmd())
	return cmd
}

func newReportInvestorCmd() *cobra.Command {
	var (
		configPath  string
		workspaceID string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "investor",
		Short: "Write an investor summary PDF for a workspace",
		Long:  "Renders the workspace's investor summary and recent closed sprint stats\nto an A4 one-pager.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportInvestor(cmd, configPath, workspaceID, outPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "runway.yaml", "path to Runway config file")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace ID (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "investor-summary.pdf", "output PDF path")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func runReportInvestor(cmd *cobra.Command, configPath, workspaceID, outPath string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := report.Investor(gormDB, workspaceID, outPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", outPath)
	return nil
}
