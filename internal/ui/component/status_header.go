package component

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/sanitize"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// StatusHeader shows the user, balance, active symbol with its live price,
// and a clock.
type StatusHeader struct {
	welcome string
	balance string
	symbol  string
	quote   chart.Quote
	now     time.Time
	style   style.HeaderStyles
	width   int
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	return &StatusHeader{
		style: style.NewHeaderStyles(style.DefaultPalette()),
	}
}

// SetUser updates the welcome and balance texts.
func (sh *StatusHeader) SetUser(welcome, balance string) {
	sh.welcome = sanitize.Text(welcome)
	sh.balance = balance
}

// SetBalance replaces the balance text only.
func (sh *StatusHeader) SetBalance(balance string) {
	sh.balance = balance
}

// SetSymbol sets the active instrument.
func (sh *StatusHeader) SetSymbol(symbol string) {
	sh.symbol = symbol
}

// SetQuote sets the displayed price and its direction.
func (sh *StatusHeader) SetQuote(q chart.Quote) {
	sh.quote = q
}

// SetTime sets the clock value.
func (sh *StatusHeader) SetTime(now time.Time) {
	sh.now = now
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
}

// PriceText returns the price exactly as displayed, or "--" before the first
// quote arrives.
func (sh *StatusHeader) PriceText() string {
	if !sh.quote.Valid {
		return "--"
	}
	return sh.quote.Text
}

func (sh *StatusHeader) priceStyle() lipgloss.Style {
	switch sh.quote.Direction {
	case chart.Up:
		return sh.style.PriceUp
	case chart.Down:
		return sh.style.PriceDown
	default:
		return sh.style.PriceNeutral
	}
}

// View renders the status header
func (sh *StatusHeader) View() string {
	sep := sh.style.Clock.Render(" │ ")
	parts := []string{sh.style.Title.Render("Paper Trader")}
	if sh.welcome != "" {
		parts = append(parts, sh.style.Welcome.Render(sh.welcome))
	}
	if sh.balance != "" {
		parts = append(parts, sh.style.Balance.Render(sh.balance))
	}
	if sh.symbol != "" {
		parts = append(parts,
			sh.style.Symbol.Render(sh.symbol)+" "+sh.priceStyle().Render(sh.PriceText()))
	}

	left := parts[0]
	for _, p := range parts[1:] {
		left += sep + p
	}

	content := left
	if !sh.now.IsZero() {
		clock := sh.style.Clock.Render(sh.now.Format("15:04:05"))
		inner := sh.width - 6
		gap := inner - lipgloss.Width(left) - lipgloss.Width(clock)
		if gap < 1 {
			gap = 1
		}
		content = left + lipgloss.NewStyle().Width(gap).Render("") + clock
	}

	container := sh.style.Container
	if sh.width > 4 {
		container = container.Width(sh.width - 2)
	}
	return container.Render(content)
}

// GetHeight returns the component height for layout calculations
func (sh *StatusHeader) GetHeight() int {
	return 3
}
