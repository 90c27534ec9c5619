// Package styles provides the terminal styling used by ferry's CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorPrimary   = lipgloss.Color("#2dd4bf")
	ColorSecondary = lipgloss.Color("#38bdf8")
	ColorSuccess   = lipgloss.Color("#4ade80")
	ColorWarning   = lipgloss.Color("#fbbf24")
	ColorError     = lipgloss.Color("#f87171")
	ColorInfo      = ColorSecondary

	ColorText      = lipgloss.Color("#e5e5e5")
	ColorTextMuted = lipgloss.Color("#737373")
	ColorBorder    = lipgloss.Color("#404040")
)

// Status glyphs.
const (
	IconSuccess = "✔"
	IconError   = "✘"
	IconWarning = "!"
	IconInfo    = "i"
	IconPending = "…"
	IconBullet  = "▸"
)

// Theme contains the composed styles.
var Theme = struct {
	Title lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Pending lipgloss.Style

	ListBullet lipgloss.Style
	ListItem   lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary),

	Muted: lipgloss.NewStyle().
		Foreground(ColorTextMuted),

	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText),

	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Info:    lipgloss.NewStyle().Foreground(ColorInfo),
	Pending: lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true),

	ListBullet: lipgloss.NewStyle().Foreground(ColorPrimary),
	ListItem:   lipgloss.NewStyle().Foreground(ColorText),
}

// RenderListItem returns a formatted list item with bullet.
func RenderListItem(item string) string {
	return Theme.ListBullet.Render(IconBullet) + " " + Theme.ListItem.Render(item)
}

// RenderSuccess returns a styled success message.
func RenderSuccess(msg string) string {
	return Theme.Success.Render(IconSuccess + " " + msg)
}

// RenderError returns a styled error message.
func RenderError(msg string) string {
	return Theme.Error.Render(IconError + " " + msg)
}

// RenderWarning returns a styled warning message.
func RenderWarning(msg string) string {
	return Theme.Warning.Render(IconWarning + " " + msg)
}

// RenderInfo returns a styled info message.
func RenderInfo(msg string) string {
	return Theme.Info.Render(IconInfo + " " + msg)
}

// RenderDepositStatus colors a deposit status by outcome.
func RenderDepositStatus(status string) string {
	switch status {
	case "accepted":
		return Theme.Success.Render(IconSuccess + " " + status)
	case "failed":
		return Theme.Error.Render(IconError + " " + status)
	case "needs-verification":
		return Theme.Warning.Render(IconWarning + " " + status)
	default:
		return Theme.Pending.Render(IconPending + " " + status)
	}
}
