package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aedash/internal/app"
)

var showOpts app.ShowOptions

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved window, a summary and the latest AE intervals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showOpts.Limit < 0 {
			return fmt.Errorf("--limit cannot be negative")
		}
		showOpts.Out = cmd.OutOrStdout()
		return getApp().Show(cmd.Context(), showOpts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showOpts.Date, "date", "", "First day of the window (YYYY-MM-DD, defaults to today)")
	showCmd.Flags().IntVar(&showOpts.Days, "days", 0, "Number of days (1-45, defaults to config)")
	showCmd.Flags().IntVar(&showOpts.Limit, "limit", 20, "Number of intervals to display (0 for all)")
	addSourceFlags(showCmd, &showOpts.Sources)
}
