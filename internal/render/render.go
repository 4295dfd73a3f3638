package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	chart "github.com/wcharczuk/go-chart/v2"

	"energy-insights/internal/dataset"
)

// ErrNothingToRender is returned for charts without any present sample.
var ErrNothingToRender = errors.New("nothing to render")

// Format is an output image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat validates an image format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unknown image format %q (valid: png, svg)", s)
	}
}

// ContentType is the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// Options size the rendered images.
type Options struct {
	Width  int
	Height int
}

// Renderer paints dataset charts with go-chart.
type Renderer struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Renderer.
func New(opts Options, logger zerolog.Logger) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	return &Renderer{opts: opts, logger: logger.With().Str("component", "renderer").Logger()}
}

// Render encodes c to w. The image is rendered into a buffer first so a
// failed render writes nothing.
func (r *Renderer) Render(w io.Writer, c dataset.Chart, format Format) error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("render %q: %w", c.Title, err)
	}

	var buf bytes.Buffer
	var err error
	switch c.Kind {
	case dataset.ChartPie:
		err = r.renderPie(&buf, c, format)
	case dataset.ChartStackedBar:
		err = r.renderStacked(&buf, c, format)
	default:
		err = r.renderXY(&buf, c, format)
	}
	if err != nil {
		return err
	}

	r.logger.Debug().Str("title", c.Title).Str("format", string(format)).Int("bytes", buf.Len()).Msg("chart rendered")
	_, err = buf.WriteTo(w)
	return err
}

// WriteFile renders c to path, creating parent directories.
func (r *Renderer) WriteFile(path string, c dataset.Chart, format Format) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, c, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
