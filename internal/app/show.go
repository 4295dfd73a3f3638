package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"energy-insights/internal/dashboard"
	"energy-insights/internal/view"
)

// Show loads every panel once and prints the composed layout.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	session, err := a.prepareSession(ctx, opts.Selection)
	if err != nil {
		return err
	}
	defer session.Close()

	layout := view.Compose(session.Snapshot(), opts.Filter)
	if opts.Format != FormatText && opts.Format != "" {
		return writeStructured(a.Out, opts.Format, layout)
	}
	return writeLayoutText(a.Out, layout)
}

// prepareSession loads a session and applies selection overrides on top of
// the configured one.
func (a *App) prepareSession(ctx context.Context, sel dashboard.Selection) (*dashboard.Session, error) {
	session := a.loadSession(ctx)
	if err := session.Apply(ctx, overlay(session.Selection(), sel)); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

// overlay replaces the fields of base that are set in over.
func overlay(base, over dashboard.Selection) dashboard.Selection {
	if over.AvgMode != "" {
		base.AvgMode = over.AvgMode
	}
	if over.Machine != "" {
		base.Machine = over.Machine
	}
	if over.Day != "" {
		base.Day = over.Day
	}
	if over.Department != "" {
		base.Department = over.Department
	}
	if over.Metric != "" {
		base.Metric = over.Metric
	}
	return base
}

func writeLayoutText(out io.Writer, layout view.Layout) error {
	if len(layout.Panels) == 0 {
		fmt.Fprintf(out, "no panels match %q\n", layout.Filter)
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range layout.Panels {
		status := p.Status.String()
		if !p.Loaded {
			status += " (no data)"
		}
		fmt.Fprintf(writer, "%s\t%s\n", p.Heading, status)
		if p.Notice != "" {
			fmt.Fprintf(writer, "  notice\t%s\n", sanitizeInline(p.Notice))
		}
		for _, st := range p.Stats {
			fmt.Fprintf(writer, "  %s\t%s\n", st.Label, st.Value)
		}
		if len(p.Options) > 0 {
			fmt.Fprintf(writer, "  options\t%s\n", strings.Join(p.Options, ", "))
		}
		if n := len(p.Chart.Data.Labels); n > 0 {
			fmt.Fprintf(writer, "  points\t%d (%s .. %s)\n", n, p.Chart.Data.Labels[0], p.Chart.Data.Labels[n-1])
		}
	}
	return writer.Flush()
}
