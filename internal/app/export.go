package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"energy-insights/internal/render"
	"energy-insights/internal/view"
)

// Export renders every visible panel into opts.Dir, one file per panel.
// Panels with nothing to draw are skipped.
func (a *App) Export(ctx context.Context, opts ExportOptions) ([]string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = a.Config.Export.Dir
	}
	if dir == "" {
		return nil, errors.New("export directory not configured")
	}
	format := opts.Format
	if format == "" {
		format = render.FormatPNG
	}

	session, err := a.prepareSession(ctx, opts.Selection)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	layout := view.Compose(session.Snapshot(), opts.Filter)
	if len(layout.Panels) == 0 {
		a.Logger.Info().Str("filter", opts.Filter).Msg("no panels match filter")
		return nil, nil
	}

	renderer := a.newRenderer()
	var written []string
	for _, p := range layout.Panels {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", p.ID, format))
		err := renderer.WriteFile(path, p.Chart, format)
		switch {
		case errors.Is(err, render.ErrNothingToRender):
			a.Logger.Warn().Str("panel", string(p.ID)).Str("status", p.Status.String()).Msg("panel has no data; skipped")
			continue
		case err != nil:
			return written, fmt.Errorf("export %s: %w", p.ID, err)
		}
		written = append(written, path)
	}

	a.Logger.Info().Int("panels", len(written)).Str("dir", dir).Msg("charts exported")
	return written, nil
}
