package component

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

var sparkChars = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline draws a close-price series as a filled area chart with the price
// axis on the right.
type Sparkline struct {
	data   []float64
	width  int
	height int
	color  lipgloss.Color
	axis   lipgloss.Style
	empty  string
}

// NewSparkline creates a new chart of the given plot size
func NewSparkline(width, height int) *Sparkline {
	palette := style.DefaultPalette()
	return &Sparkline{
		width:  width,
		height: height,
		color:  palette.PriceUp,
		axis:   lipgloss.NewStyle().Foreground(palette.PriceNeutral),
		empty:  "No data",
	}
}

// SetData replaces the series
func (s *Sparkline) SetData(data []float64) *Sparkline {
	s.data = make([]float64, len(data))
	copy(s.data, data)
	return s
}

// SetSize sets the plot area, excluding the axis labels
func (s *Sparkline) SetSize(width, height int) *Sparkline {
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
	return s
}

// SetColor sets the series color
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// SetEmptyText sets what is shown when there is no data
func (s *Sparkline) SetEmptyText(text string) *Sparkline {
	s.empty = text
	return s
}

// Len returns the number of points in the series
func (s *Sparkline) Len() int {
	return len(s.data)
}

// View renders the chart
func (s *Sparkline) View() string {
	if len(s.data) == 0 || s.width <= 0 || s.height <= 0 {
		return lipgloss.Place(s.width+axisWidth, s.height, lipgloss.Center, lipgloss.Center,
			s.axis.Render(s.empty))
	}

	columns := s.resample()
	min, max := minMax(columns)
	levels := s.height * (len(sparkChars) - 1)

	heights := make([]int, len(columns))
	for i, v := range columns {
		if max == min {
			heights[i] = levels / 2
			continue
		}
		heights[i] = int(math.Round((v - min) / (max - min) * float64(levels-1)))
		heights[i]++
	}

	series := lipgloss.NewStyle().Foreground(s.color)
	steps := len(sparkChars) - 1
	rows := make([]string, s.height)
	for r := 0; r < s.height; r++ {
		// row 0 is the top of the plot
		floor := (s.height - 1 - r) * steps
		var line strings.Builder
		for _, h := range heights {
			fill := h - floor
			switch {
			case fill <= 0:
				line.WriteRune(' ')
			case fill >= steps:
				line.WriteRune(sparkChars[steps])
			default:
				line.WriteRune(sparkChars[fill])
			}
		}
		pad := s.width - len(heights)
		if pad > 0 {
			line.WriteString(strings.Repeat(" ", pad))
		}
		rows[r] = series.Render(line.String()) + s.axisLabel(r, min, max)
	}

	return strings.Join(rows, "\n")
}

const axisWidth = 11

func (s *Sparkline) axisLabel(row int, min, max float64) string {
	var value float64
	switch {
	case row == 0:
		value = max
	case row == s.height-1:
		value = min
	case row == (s.height-1)/2 && s.height > 2:
		value = (min + max) / 2
	default:
		return strings.Repeat(" ", axisWidth)
	}
	return s.axis.Render(fmt.Sprintf(" %*.2f", axisWidth-1, value))
}

// resample maps the series onto at most width columns, keeping the last
// point so the right edge always shows the latest close.
func (s *Sparkline) resample() []float64 {
	if len(s.data) <= s.width {
		return s.data
	}
	if s.width == 1 {
		return s.data[len(s.data)-1:]
	}
	out := make([]float64, s.width)
	for i := range out {
		idx := int(float64(i) * float64(len(s.data)-1) / float64(s.width-1))
		out[i] = s.data[idx]
	}
	return out
}

func minMax(data []float64) (float64, float64) {
	min, max := data[0], data[0]
	for _, value := range data {
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}
	return min, max
}

// GetChangePercent returns the percentage change from first to last data point
func (s *Sparkline) GetChangePercent() float64 {
	if len(s.data) < 2 {
		return 0
	}

	first := s.data[0]
	last := s.data[len(s.data)-1]

	if first == 0 {
		return 0
	}

	return (last - first) / first * 100
}

// GetTrend returns an arrow for the overall direction of the series
func (s *Sparkline) GetTrend() string {
	change := s.GetChangePercent()
	switch {
	case len(s.data) < 2 || math.Abs(change) < 0.1:
		return "→"
	case change > 0:
		return "↗"
	default:
		return "↘"
	}
}
