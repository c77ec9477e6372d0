package component

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/sanitize"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// Alert is a modal prompt that must be acknowledged before any other input
// is accepted.
type Alert struct {
	text   string
	open   bool
	styles style.ModalStyles
}

// NewAlert creates a closed alert
func NewAlert() *Alert {
	return &Alert{styles: style.NewModalStyles(style.DefaultPalette())}
}

// Show opens the alert with the given text, replacing any open one.
func (a *Alert) Show(text string) {
	a.text = sanitize.Text(text)
	a.open = true
}

// Dismiss closes the alert
func (a *Alert) Dismiss() {
	a.open = false
	a.text = ""
}

// Open reports whether the alert is showing
func (a *Alert) Open() bool {
	return a.open
}

// Text returns the current alert text
func (a *Alert) Text() string {
	return a.text
}

// View renders the alert centered in a width x height area.
func (a *Alert) View(width, height int) string {
	if !a.open {
		return ""
	}
	box := a.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Center,
		a.styles.Text.Render(a.text),
		a.styles.Hint.Render("enter to dismiss"),
	))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
