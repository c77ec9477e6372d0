package chart

import "github.com/shopspring/decimal"

// Direction is the movement of the displayed price relative to the previous
// display.
type Direction int

const (
	Neutral Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "neutral"
	}
}

// PriceDecimals is the precision prices are displayed with.
const PriceDecimals = 4

// PriceTracker remembers the last displayed price. The first observation is
// always Neutral.
type PriceTracker struct {
	previous decimal.Decimal
	seen     bool
}

// Observe records price and reports its direction against the previous one.
func (t *PriceTracker) Observe(price decimal.Decimal) Direction {
	dir := Neutral
	if t.seen {
		switch price.Cmp(t.previous) {
		case 1:
			dir = Up
		case -1:
			dir = Down
		}
	}
	t.previous = price
	t.seen = true
	return dir
}

// Reset forgets the previous price.
func (t *PriceTracker) Reset() {
	t.previous = decimal.Zero
	t.seen = false
}

// Quote is what the price display shows.
type Quote struct {
	Price     decimal.Decimal
	Text      string
	Direction Direction
	Valid     bool
}

// FormatPrice renders a price with PriceDecimals places.
func FormatPrice(p decimal.Decimal) string {
	return p.StringFixed(PriceDecimals)
}
