package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"energy-insights/internal/app"
)

var (
	askFormat string
	askChart  string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a natural-language question about the energy data",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := app.ParseOutputFormat(askFormat)
		if err != nil {
			return err
		}

		opts := app.AskOptions{
			Prompt:    strings.Join(args, " "),
			Format:    format,
			ChartPath: askChart,
		}

		return getApp().Ask(cmd.Context(), opts)
	},
}

func init() {
	askCmd.Flags().StringVar(&askFormat, "format", "text", "Output format: text, json or yaml")
	askCmd.Flags().StringVar(&askChart, "chart", "", "Write a chart answer to this .png or .svg path")
}
