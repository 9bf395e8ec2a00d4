package cli

import (
	"github.com/spf13/cobra"

	"aedash/internal/app"
)

var watchOpts app.WatchOptions

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically re-render the trailing window and notify on failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), watchOpts)
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchOpts.Days, "days", 0, "Trailing days ending today (defaults to config)")
	watchCmd.Flags().BoolVar(&watchOpts.Clamp, "clamp", false, "Clamp the value axis to the configured range")
	watchCmd.Flags().StringVar(&watchOpts.PNGPath, "png", "", "Path the chart is rewritten to (defaults to config)")
}
