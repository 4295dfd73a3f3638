package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"energy-insights/internal/app"
)

var recordsLimit int

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List recent monitoring records of the selected category",
	RunE: func(cmd *cobra.Command, args []string) error {
		if recordsLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.RecordsOptions{
			Category: getApp().Config.App.Category,
			Limit:    recordsLimit,
		}

		return getApp().Records(cmd.Context(), opts)
	},
}

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 20, "Number of records to display")
}
