package cli

import (
	"github.com/spf13/cobra"

	"aedash/internal/app"
)

var archiveOpts app.ArchiveOptions

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Render one chart and CSV per day over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Archive(cmd.Context(), archiveOpts)
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archiveOpts.From, "from", "", "First date (YYYY-MM-DD, inclusive)")
	archiveCmd.Flags().StringVar(&archiveOpts.To, "to", "", "Last date (YYYY-MM-DD, inclusive)")
	archiveCmd.Flags().StringVar(&archiveOpts.Dir, "dir", "archive", "Output directory")
	archiveCmd.Flags().BoolVar(&archiveOpts.Clamp, "clamp", false, "Clamp the value axis to the configured range")
	archiveCmd.Flags().IntVar(&archiveOpts.Workers, "workers", 2, "Number of days rendered concurrently")
	addSourceFlags(archiveCmd, &archiveOpts.Sources)
}
