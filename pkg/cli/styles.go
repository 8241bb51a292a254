package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/funvibe/speclink/internal/config"
)

// Color palette shared by every command.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// styles holds the lipgloss styles bound to one output stream.
type styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Code     lipgloss.Style
	Location lipgloss.Style
}

func newStyles(w io.Writer, colored bool) styles {
	r := lipgloss.NewRenderer(w)
	if colored {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		Title:    r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Muted:    r.NewStyle().Foreground(ColorMuted),
		Error:    r.NewStyle().Bold(true).Foreground(ColorError),
		Code:     r.NewStyle().Foreground(ColorWarning),
		Location: r.NewStyle().Foreground(ColorHighlight),
	}
}

// useColor decides whether output to w is colored under mode.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
