package cli

import (
	"github.com/spf13/cobra"

	"energy-insights/internal/app"
)

var (
	showFilter    string
	showFormat    string
	showSelection selectionFlags
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Load every panel once and print the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := app.ParseOutputFormat(showFormat)
		if err != nil {
			return err
		}
		sel, err := showSelection.selection()
		if err != nil {
			return err
		}

		opts := app.ShowOptions{
			Filter:    showFilter,
			Format:    format,
			Selection: sel,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showFilter, "filter", "", "Only show panels whose heading contains this text")
	showCmd.Flags().StringVar(&showFormat, "format", "text", "Output format: text, json or yaml")
	showSelection.register(showCmd)
}
