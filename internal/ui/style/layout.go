package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Italic(true)
)

// Layout styles
var (
	ContainerStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Margin(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)
)

// Form styles
var (
	FormErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Margin(0, 1)

	LinkStyle = lipgloss.NewStyle().
			Foreground(palette.Info).
			Underline(true)
)

// Status styles
var (
	InfoStyle = lipgloss.NewStyle().
			Foreground(palette.Info)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

// Trading styles
var (
	BuyStyle = lipgloss.NewStyle().
			Foreground(palette.Buy).
			Bold(true)

	SellStyle = lipgloss.NewStyle().
			Foreground(palette.Sell).
			Bold(true)

	ProfitStyle = lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true)

	LossStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)
)

// Help bar style
var (
	HelpStyle = lipgloss.NewStyle().
		Foreground(palette.TextMuted).
		Italic(true)
)

// AdaptiveJoinHorizontal stacks blocks vertically on narrow terminals.
func AdaptiveJoinHorizontal(width int, blocks ...string) string {
	if width < 100 {
		return lipgloss.JoinVertical(lipgloss.Left, blocks...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}
