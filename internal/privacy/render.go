package privacy

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Terminal cells are roughly ten pixels wide; strip widths are scaled by this.
const cellPixels = 10

type rgb struct{ r, g, b int }

var (
	red        = rgb{255, 0, 0}
	cyan       = rgb{0, 255, 255}
	shadowBack = lipgloss.Color("#1c1c1c")
)

func (c rgb) blend(o rgb, alpha int) rgb {
	mix := func(a, b int) int { return (a*(255-alpha) + b*alpha) / 255 }
	return rgb{mix(c.r, o.r), mix(c.g, o.g), mix(c.b, o.b)}
}

func (c rgb) color() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b))
}

// Renderer applies privacy mode to text written to a terminal.
type Renderer struct {
	r        *lipgloss.Renderer
	settings Settings
}

// NewRenderer builds a renderer for output w. The colour profile is detected
// from w and the environment.
func NewRenderer(w io.Writer, s Settings) *Renderer {
	return &Renderer{r: lipgloss.NewRenderer(w), settings: s}
}

// SetColorProfile pins the colour profile, e.g. for non-terminal output.
func (p *Renderer) SetColorProfile(profile termenv.Profile) {
	p.r.SetColorProfile(profile)
}

func (p *Renderer) Settings() Settings {
	return p.settings
}

func (p *Renderer) SetSettings(s Settings) {
	p.settings = s
}

// base is the dimmed foreground. A dark terminal is assumed, so opacity maps
// to grey level.
func (p *Renderer) base() rgb {
	a := p.settings.Alpha()
	return rgb{a, a, a}
}

// Render returns text as it should appear with privacy mode applied. With
// privacy mode off text is returned unchanged.
func (p *Renderer) Render(text string) string {
	s := p.settings
	if !s.Enabled {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = p.renderLine(i, line)
	}
	return strings.Join(lines, "\n")
}

func (p *Renderer) renderLine(y int, line string) string {
	s := p.settings
	style := p.r.NewStyle().Foreground(p.base().color())
	if s.Shadow {
		style = style.Background(shadowBack)
	}
	if s.Scanlines > 0 && y%s.LineSpacing() == 0 {
		style = style.Faint(true)
	}
	if line == "" {
		return ""
	}
	if s.Aberration == 0 {
		return style.Render(line)
	}

	width := s.StripWidth() / cellPixels
	if width < 1 {
		width = 1
	}
	shift := y * s.AberrationOffset()

	var b strings.Builder
	runes := []rune(line)
	for start := 0; start < len(runes); {
		strip := (start + shift) / width
		end := (strip+1)*width - shift
		if end > len(runes) {
			end = len(runes)
		}
		tint := red
		if strip%2 == 1 {
			tint = cyan
		}
		fg := p.base().blend(tint, s.AberrationAlpha())
		b.WriteString(style.Foreground(fg.color()).Render(string(runes[start:end])))
		start = end
	}
	return b.String()
}
