package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Color scheme
var (
	ColorPrimary   = lipgloss.Color("#00D9FF")
	ColorSecondary = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorDanger    = lipgloss.Color("#EF4444")
	ColorInfo      = lipgloss.Color("#3B82F6")

	ColorTextSecondary = lipgloss.Color("#9CA3AF")
	ColorTextMuted     = lipgloss.Color("#6B7280")
)

// Styles is the set of styles the console renders with. All styles are
// bound to one lipgloss renderer so the colour profile follows the output
// they are written to.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Menu     lipgloss.Style
	Key      lipgloss.Style
	QuitKey  lipgloss.Style
	KeyDesc  lipgloss.Style
	Command  lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Prompt   lipgloss.Style

	StatusReady    lipgloss.Style
	StatusNotReady lipgloss.Style
	StatusPending  lipgloss.Style
}

// NewStyles builds the style set for a renderer
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:    r.NewStyle().Bold(true).Foreground(ColorSuccess),
		Subtitle: r.NewStyle().Bold(true).Foreground(ColorInfo),
		Menu:     r.NewStyle().Bold(true).Foreground(ColorWarning),
		Key:      r.NewStyle().Bold(true).Foreground(ColorSuccess),
		QuitKey:  r.NewStyle().Bold(true).Foreground(ColorWarning),
		KeyDesc:  r.NewStyle().Foreground(ColorTextSecondary),
		Command:  r.NewStyle().Foreground(ColorSuccess),
		Success:  r.NewStyle().Bold(true).Foreground(ColorSuccess),
		Warning:  r.NewStyle().Bold(true).Foreground(ColorWarning),
		Error:    r.NewStyle().Bold(true).Foreground(ColorDanger),
		Muted:    r.NewStyle().Foreground(ColorTextMuted),
		Prompt:   r.NewStyle().Bold(true).Foreground(ColorPrimary),

		StatusReady:    r.NewStyle().Bold(true).Foreground(ColorSuccess),
		StatusNotReady: r.NewStyle().Bold(true).Foreground(ColorDanger),
		StatusPending:  r.NewStyle().Bold(true).Foreground(ColorWarning),
	}
}

// RenderStatus colours a pod or node status the way kubectl users read it
func (s Styles) RenderStatus(status string) string {
	switch status {
	case "Running", "Ready", "Succeeded", "Completed":
		return s.StatusReady.Render(status)
	case "Pending", "ContainerCreating", "PodInitializing", "Terminating":
		return s.StatusPending.Render(status)
	case "":
		return s.Muted.Render("-")
	default:
		return s.StatusNotReady.Render(status)
	}
}

// FormatBytes formats bytes to human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatMillicores formats CPU millicores
func FormatMillicores(millicores int64) string {
	if millicores < 1000 {
		return fmt.Sprintf("%dm", millicores)
	}
	return fmt.Sprintf("%.2f", float64(millicores)/1000)
}

// FormatPercentage formats a percentage value
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// FormatAge formats an age the way kubectl's AGE column does, in its
// largest whole unit
func FormatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0s"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// truncate shortens s to at most width terminal cells. Wide runes (Korean,
// CJK) count as two cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	plain := stripANSI(s)
	if runewidth.StringWidth(plain) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(plain, width, "")
	}
	return runewidth.Truncate(plain, width, "...")
}

// singleLine collapses newlines so one record stays on one table row
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
