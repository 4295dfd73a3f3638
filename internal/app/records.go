package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"energy-insights/internal/telemetry"
)

// Records prints the newest monitoring records of a category.
func (a *App) Records(ctx context.Context, opts RecordsOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot list records")
	}
	if closeStore != nil {
		defer closeStore()
	}

	category := opts.Category
	if category == "" {
		category = a.Config.App.Category
	}

	records, err := store.ListRecords(ctx, category, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(a.Out, "no records found for category %q\n", category)
		return nil
	}
	if err := writeRecords(a, records); err != nil {
		return err
	}

	total, err := store.CountRecords(ctx, category)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("count records failed")
		return nil
	}
	fmt.Fprintf(a.Out, "showing %d of %d records\n", len(records), total)
	return nil
}

func writeRecords(a *App, records []telemetry.MonitoringRecord) error {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tCategory\tMetrics")
	for _, r := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", r.Timestamp.UTC().Format(time.RFC3339), r.Category, formatMetrics(r.Metrics))
	}
	return writer.Flush()
}

func formatMetrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, m[k]))
	}
	return strings.Join(parts, " ")
}
