package style

import (
	"github.com/charmbracelet/lipgloss"
)

// HeaderStyles provides styling for the status header
type HeaderStyles struct {
	Container    lipgloss.Style
	Title        lipgloss.Style
	Welcome      lipgloss.Style
	Balance      lipgloss.Style
	Symbol       lipgloss.Style
	PriceUp      lipgloss.Style
	PriceDown    lipgloss.Style
	PriceNeutral lipgloss.Style
	Clock        lipgloss.Style
}

// NewHeaderStyles creates header styles with the given palette
func NewHeaderStyles(palette Palette) HeaderStyles {
	return HeaderStyles{
		Container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		Welcome: lipgloss.NewStyle().
			Foreground(palette.Text),

		Balance: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		Symbol: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),

		PriceUp: lipgloss.NewStyle().
			Foreground(palette.PriceUp).
			Bold(true),

		PriceDown: lipgloss.NewStyle().
			Foreground(palette.PriceDown).
			Bold(true),

		PriceNeutral: lipgloss.NewStyle().
			Foreground(palette.PriceNeutral),

		Clock: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
	}
}

// BannerStyles colours the chart banner by kind.
type BannerStyles struct {
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func bannerBase(bg lipgloss.Color, fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Padding(0, 2).
		Align(lipgloss.Center)
}

// NewBannerStyles creates banner styles
func NewBannerStyles(palette Palette) BannerStyles {
	return BannerStyles{
		Info:    bannerBase(palette.Info, palette.OnAccent),
		Success: bannerBase(palette.Success, palette.OnAccent),
		Warning: bannerBase(palette.Warning, palette.OnAccent),
		Error:   bannerBase(palette.Error, palette.OnAccent),
	}
}

// ModalStyles provides styling for blocking alerts
type ModalStyles struct {
	Box  lipgloss.Style
	Text lipgloss.Style
	Hint lipgloss.Style
}

// NewModalStyles creates alert styles
func NewModalStyles(palette Palette) ModalStyles {
	return ModalStyles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(palette.Secondary).
			Padding(1, 4),

		Text: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		Hint: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true).
			MarginTop(1),
	}
}

// LogStyles provides styling for the log viewer
type LogStyles struct {
	Container lipgloss.Style
	Title     lipgloss.Style
	Timestamp lipgloss.Style
	Logger    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Debug     lipgloss.Style
}

// NewLogStyles creates log viewer styles
func NewLogStyles(palette Palette) LogStyles {
	return LogStyles{
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),

		Timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Logger: lipgloss.NewStyle().
			Foreground(palette.Secondary),

		Error: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(palette.Warning),

		Info: lipgloss.NewStyle().
			Foreground(palette.Text),

		Debug: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
	}
}
