package cli

import (
	"github.com/spf13/cobra"

	"aedash/internal/app"
)

// addSourceFlags lets a command replay saved payloads instead of calling the feeds.
func addSourceFlags(cmd *cobra.Command, src *app.Sources) {
	cmd.Flags().StringVar(&src.SpotFile, "spot-file", "", "Read spot prices from a saved marketdata JSON payload")
	cmd.Flags().StringVar(&src.ActivationFile, "activation-file", "", "Read AE rows from a saved CSV export")
}
