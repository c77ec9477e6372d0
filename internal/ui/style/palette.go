package style

import "github.com/charmbracelet/lipgloss"

// Base colors of the default theme.
var (
	cyan    = lipgloss.Color("#00E5FF")
	magenta = lipgloss.Color("#FF1B6B")
	amber   = lipgloss.Color("#FFB500")
	teal    = lipgloss.Color("#00D4AA") // price up, profit
	coral   = lipgloss.Color("#FF6B6B") // price down, loss
	blue    = lipgloss.Color("#2196F3")
	white   = lipgloss.Color("#FFFFFF")

	Base03 = lipgloss.Color("#1B1D23") // background
	Base02 = lipgloss.Color("#262831")
	Base01 = lipgloss.Color("#6C7280") // muted text
	Base2  = lipgloss.Color("#ECEFF4") // text
	Base1  = lipgloss.Color("#CCCCCC") // unchanged price
)

// Palette names colors by role so components never pick raw colors.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
	OnAccent      lipgloss.Color

	Buy  lipgloss.Color
	Sell lipgloss.Color

	PriceUp      lipgloss.Color
	PriceDown    lipgloss.Color
	PriceNeutral lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   cyan,
		Secondary: magenta,
		Success:   teal,
		Error:     coral,
		Warning:   amber,
		Info:      blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
		OnAccent:      white,

		Buy:  teal,
		Sell: coral,

		PriceUp:      teal,
		PriceDown:    coral,
		PriceNeutral: Base1,
	}
}
