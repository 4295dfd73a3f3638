package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

var fallbackColor = drawing.Color{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF}

// parseColor understands "#rgb", "#rrggbb", "#rrggbbaa", "rgb(...)" and "rgba(...)".
func parseColor(s string) (drawing.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba("), strings.HasPrefix(s, "rgb("):
		return parseFunc(s)
	default:
		return drawing.Color{}, fmt.Errorf("unsupported colour %q", s)
	}
}

func parseHex(h string) (drawing.Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return drawing.Color{}, fmt.Errorf("bad hex colour #%s", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("bad hex colour #%s: %w", h, err)
	}
	return drawing.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(s string) (drawing.Color, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return drawing.Color{}, fmt.Errorf("bad colour %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return drawing.Color{}, fmt.Errorf("bad colour %q", s)
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return drawing.Color{}, fmt.Errorf("bad colour component %q", parts[i])
		}
		rgb[i] = uint8(v)
	}
	alpha := uint8(0xFF)
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return drawing.Color{}, fmt.Errorf("bad alpha %q", parts[3])
		}
		alpha = uint8(a*255 + 0.5)
	}
	return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, nil
}

// colorOr parses s, falling back to def when s is empty or invalid.
func colorOr(s string, def drawing.Color) drawing.Color {
	if s == "" {
		return def
	}
	c, err := parseColor(s)
	if err != nil {
		return def
	}
	return c
}
