package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"energy-insights/internal/app"
	"energy-insights/internal/render"
)

var (
	exportDir       string
	exportFilter    string
	exportFormat    string
	exportSelection selectionFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the visible panels as PNG or SVG charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		sel, err := exportSelection.selection()
		if err != nil {
			return err
		}

		opts := app.ExportOptions{
			Dir:       exportDir,
			Filter:    exportFilter,
			Format:    format,
			Selection: sel,
		}

		written, err := getApp().Export(cmd.Context(), opts)
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return err
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Directory to write charts into (defaults to config)")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "Only export panels whose heading contains this text")
	exportCmd.Flags().StringVar(&exportFormat, "format", "png", "Image format: png or svg")
	exportSelection.register(exportCmd)
}
