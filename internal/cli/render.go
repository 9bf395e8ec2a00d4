package cli

import (
	"github.com/spf13/cobra"

	"aedash/internal/app"
)

var renderOpts app.RenderOptions

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the AE/spot chart and export the aligned tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Render(cmd.Context(), renderOpts)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOpts.Date, "date", "", "First day of the window (YYYY-MM-DD, defaults to today)")
	renderCmd.Flags().IntVar(&renderOpts.Days, "days", 0, "Number of days (1-45, defaults to config)")
	renderCmd.Flags().BoolVar(&renderOpts.Clamp, "clamp", false, "Clamp the value axis to the configured range")
	renderCmd.Flags().StringVar(&renderOpts.PNGPath, "png", "", "Path to write PNG chart")
	renderCmd.Flags().StringVar(&renderOpts.CSVPath, "csv", "", "Path to write CSV data")
	renderCmd.Flags().StringVar(&renderOpts.XLSXPath, "xlsx", "", "Path to write an Excel workbook")
	addSourceFlags(renderCmd, &renderOpts.Sources)
}
