package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// TERMINAL STYLES
// =============================================================================

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00AF5F", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7005F", Dark: "#FF5F87"})
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008787", Dark: "#00D7D7"})
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// tone is the color family of a report line.
type tone int

const (
	tonePlain tone = iota
	toneSuccess
	toneError
	toneWarn
	toneInfo
	toneMuted
	toneTitle
)

// lineTone classifies a report line by its leading marker.
func lineTone(line string) tone {
	trimmed := strings.TrimLeft(line, " \n")
	switch {
	case strings.HasPrefix(trimmed, "❌"), strings.HasPrefix(trimmed, "🔻"):
		return toneError
	case strings.HasPrefix(trimmed, "📋"):
		return toneTitle
	case strings.HasPrefix(trimmed, "✅"):
		return toneSuccess
	case strings.HasPrefix(trimmed, "⚠️"):
		return toneWarn
	case strings.HasPrefix(trimmed, "💱"), strings.HasPrefix(trimmed, "🛠️"), strings.HasPrefix(trimmed, "🔄"):
		return toneInfo
	case strings.HasPrefix(trimmed, "🟢"), strings.HasPrefix(trimmed, "🗑️"):
		return toneMuted
	}
	return tonePlain
}

func styleFor(t tone) lipgloss.Style {
	switch t {
	case toneSuccess:
		return successStyle
	case toneError:
		return errorStyle
	case toneWarn:
		return warnStyle
	case toneInfo:
		return infoStyle
	case toneMuted:
		return mutedStyle
	case toneTitle:
		return titleStyle
	}
	return lipgloss.NewStyle()
}

// printReport writes report lines with their colors. Leading newlines are
// kept outside the styled text.
func printReport(w io.Writer, lines []string) {
	for _, line := range lines {
		body := strings.TrimLeft(line, "\n")
		prefix := line[:len(line)-len(body)]
		fmt.Fprintf(w, "%s%s\n", prefix, styleFor(lineTone(line)).Render(body))
	}
}
