package chart

import "time"

// BannerKind selects banner styling and lifetime.
type BannerKind int

const (
	BannerInfo BannerKind = iota
	BannerSuccess
	BannerWarning
	BannerError
)

func (k BannerKind) String() string {
	switch k {
	case BannerSuccess:
		return "success"
	case BannerWarning:
		return "warning"
	case BannerError:
		return "error"
	default:
		return "info"
	}
}

// Banner is a one-line status message above the chart. Error banners never
// expire; the rest disappear at Expires.
type Banner struct {
	Kind    BannerKind
	Text    string
	Expires time.Time
}

// Visible reports whether the banner should be drawn at now.
func (b Banner) Visible(now time.Time) bool {
	if b.Text == "" {
		return false
	}
	if b.Kind == BannerError {
		return true
	}
	return now.Before(b.Expires)
}
