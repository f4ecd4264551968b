package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TimAnthonyAlexander/leads/internal/export"
)

// newExportCmd creates the 'export' subcommand: kept leads to an xlsx
// workbook.
func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the kept-leads table to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return export.WriteXLSX(cmd.Context(), appInstance.Store(), outPath, appInstance.Logger())
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "leads.xlsx", "output workbook path")
	return cmd
}
