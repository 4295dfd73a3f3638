package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"energy-insights/internal/query"
	"energy-insights/internal/render"
)

// Ask submits a natural-language query and prints the settled result.
func (a *App) Ask(ctx context.Context, opts AskOptions) error {
	resolver := query.NewResolver(a.newClient(), a.Logger)
	res, err := resolver.Submit(ctx, opts.Prompt)
	if err != nil {
		return err
	}

	if opts.ChartPath != "" && res.Config.ChartConfig != nil {
		format, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(opts.ChartPath), "."))
		if err != nil {
			return err
		}
		if err := a.newRenderer().WriteFile(opts.ChartPath, res.Config.ChartConfig.Chart(), format); err != nil {
			return fmt.Errorf("render answer: %w", err)
		}
		a.Logger.Info().Str("path", opts.ChartPath).Msg("answer chart written")
	}

	if opts.Format != FormatText && opts.Format != "" {
		return writeStructured(a.Out, opts.Format, res)
	}
	return writeResultText(a, res)
}

func writeResultText(a *App, res query.Result) error {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Query\t%s\n", sanitizeInline(res.Query))
	fmt.Fprintf(writer, "State\t%s\n", res.State)

	switch res.Config.DisplayType {
	case query.DisplayChart:
		cfg := res.Config.ChartConfig
		fmt.Fprintf(writer, "Chart\t%s (%s)\n", cfg.Title, cfg.Type)
		for _, d := range cfg.Datasets {
			fmt.Fprintf(writer, "  %s\t%d points\n", d.Label, len(d.Data))
		}
	default:
		for _, c := range res.Config.Cards {
			value := c.Value
			if c.Unit != "" {
				value += " " + c.Unit
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", c.Title, value, c.Trend, sanitizeInline(c.Description))
		}
	}
	return writer.Flush()
}
