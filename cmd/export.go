package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/logiprep/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write your statistics and answer history to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, data, err := loadReport(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		path, _ := cmd.Flags().GetString("output")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := report.WriteXLSX(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d answers, %d sessions)\n", path, len(data.History), len(data.Sessions))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "logiprep-report.xlsx", "Output file")
}
