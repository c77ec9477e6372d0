package component

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/sanitize"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// BannerView renders the chart status banner.
type BannerView struct {
	banner chart.Banner
	styles style.BannerStyles
	width  int
}

// NewBannerView creates an empty banner
func NewBannerView() *BannerView {
	return &BannerView{styles: style.NewBannerStyles(style.DefaultPalette())}
}

// Set replaces the banner being shown
func (b *BannerView) Set(banner chart.Banner) {
	b.banner = banner
}

// SetWidth sets the banner width
func (b *BannerView) SetWidth(width int) {
	b.width = width
}

// View renders the banner, or an empty string once it has expired.
func (b *BannerView) View(now time.Time) string {
	if !b.banner.Visible(now) {
		return ""
	}

	var st lipgloss.Style
	switch b.banner.Kind {
	case chart.BannerSuccess:
		st = b.styles.Success
	case chart.BannerWarning:
		st = b.styles.Warning
	case chart.BannerError:
		st = b.styles.Error
	default:
		st = b.styles.Info
	}
	if b.width > 0 {
		st = st.Width(b.width)
	}
	return st.Render(sanitize.Text(b.banner.Text))
}
