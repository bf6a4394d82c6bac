package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Theme is resolved once by the host and handed to the renderer.
type Theme struct {
	Background color.NRGBA
	Fill       color.NRGBA
	Stroke     color.NRGBA
	Text       color.NRGBA
}

// ThemeNames are the colour strings a host supplies, e.g. from a config file
// or a stylesheet. Empty or unparsable entries fall back to DefaultTheme.
type ThemeNames struct {
	Background string `toml:"background" json:"background"`
	Fill       string `toml:"fill" json:"fill"`
	Stroke     string `toml:"stroke" json:"stroke"`
	Text       string `toml:"text" json:"text"`
}

var DefaultTheme = Theme{
	Background: color.NRGBA{R: 0x1f, G: 0x28, B: 0x3b, A: 0xff},
	Fill:       color.NRGBA{R: 0xf8, G: 0x71, B: 0x71, A: 0xff},
	Stroke:     color.NRGBA{R: 0x7f, G: 0x1d, B: 0x1d, A: 0xff},
	Text:       color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xde},
}

// ResolveTheme parses each name, falling back field by field. The returned
// errors describe the entries that were present but could not be parsed.
func ResolveTheme(names ThemeNames) (Theme, []error) {
	t := DefaultTheme
	var errs []error
	for _, f := range []struct {
		name string
		raw  string
		dst  *color.NRGBA
	}{
		{"background", names.Background, &t.Background},
		{"fill", names.Fill, &t.Fill},
		{"stroke", names.Stroke, &t.Stroke},
		{"text", names.Text, &t.Text},
	} {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		c, err := ParseColor(f.raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("theme %s: %w", f.name, err))
			continue
		}
		*f.dst = c
	}
	return t, errs
}

// ParseColor understands the CSS forms a host is likely to hand over:
// #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(r, g, b) and rgba(r, g, b, a) with a
// in [0, 1].
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return color.NRGBA{}, fmt.Errorf("unsupported colour %q", s)
}

func parseHex(h string) (color.NRGBA, error) {
	switch len(h) {
	case 3, 4:
		var long strings.Builder
		for _, r := range h {
			long.WriteRune(r)
			long.WriteRune(r)
		}
		h = long.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("bad hex colour length %d", len(h))
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad hex colour: %w", err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(args string, want int) (color.NRGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != want {
		return color.NRGBA{}, fmt.Errorf("expected %d components, got %d", want, len(parts))
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("bad colour component %q", parts[i])
		}
		rgb[i] = uint8(v + 0.5)
	}
	a := uint8(0xff)
	if want == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return color.NRGBA{}, fmt.Errorf("bad alpha %q", parts[3])
		}
		a = uint8(v*255 + 0.5)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: a}, nil
}

// withAlpha returns c with its alpha scaled by f.
func withAlpha(c color.Color, f float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A)*f + 0.5)
	return n
}

// CSS formats c for SVG and HTML attributes.
func CSS(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", n.R, n.G, n.B, float64(n.A)/255)
}
