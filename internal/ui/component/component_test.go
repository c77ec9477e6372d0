package component

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparklineResample(t *testing.T) {
	s := NewSparkline(3, 4).SetData([]float64{1, 2, 3, 4, 5, 6, 7})
	assert.Equal(t, []float64{1, 4, 7}, s.resample())

	s.SetSize(1, 4)
	assert.Equal(t, []float64{7}, s.resample())

	s.SetData([]float64{1, 2})
	s.SetSize(10, 4)
	assert.Equal(t, []float64{1, 2}, s.resample())
}

func TestSparklineTrend(t *testing.T) {
	s := NewSparkline(20, 5)
	assert.Equal(t, "→", s.GetTrend())
	assert.Zero(t, s.GetChangePercent())

	s.SetData([]float64{100, 110})
	assert.InDelta(t, 10.0, s.GetChangePercent(), 1e-9)
	assert.Equal(t, "↗", s.GetTrend())

	s.SetData([]float64{100, 90})
	assert.Equal(t, "↘", s.GetTrend())
}

func TestSparklineEmptyText(t *testing.T) {
	s := NewSparkline(20, 5).SetEmptyText("Waiting for market data...")
	assert.Contains(t, s.View(), "Waiting for market data...")
	assert.Zero(t, s.Len())
}

func TestFormFocusAndInput(t *testing.T) {
	f := NewForm().
		AddField("username", FieldTypeText, "Username", true, "").
		AddField("password", FieldTypePassword, "Password", true, "")

	require.True(t, f.Focused())
	assert.Equal(t, "username", f.FocusedField())

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bob")})
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "password", f.FocusedField())

	assert.False(t, f.Validate())
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pw")})
	assert.True(t, f.Validate())

	assert.Equal(t, map[string]string{"username": "bob", "password": "pw"}, f.GetValues())
	assert.NotContains(t, f.View(), "pw")

	f.Blur()
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, "pw", f.GetValue("password"))
}

func TestFormSelectCycles(t *testing.T) {
	f := NewForm().AddField("symbol", FieldTypeSelect, "Symbol", false, "")
	f.SetFieldOptions("symbol", []string{"XAUUSD", "EURUSD"})
	f.SetFieldValue("symbol", "EURUSD")
	assert.Equal(t, "EURUSD", f.GetValue("symbol"))

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "XAUUSD", f.GetValue("symbol"))

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "EURUSD", f.GetValue("symbol"))
}

func TestAlert(t *testing.T) {
	a := NewAlert()
	assert.False(t, a.Open())
	assert.Empty(t, a.View(80, 20))

	a.Show("Order failed: \x1b[31mno margin\x1b[0m")
	require.True(t, a.Open())
	assert.Equal(t, "Order failed: no margin", a.Text())
	assert.Contains(t, a.View(80, 20), "no margin")

	a.Dismiss()
	assert.False(t, a.Open())
	assert.Empty(t, a.Text())
}

func TestBannerViewExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewBannerView()

	b.Set(chart.Banner{Kind: chart.BannerInfo, Text: "Loading market data...", Expires: now.Add(5 * time.Second)})
	assert.Contains(t, b.View(now), "Loading market data...")
	assert.Empty(t, b.View(now.Add(6*time.Second)))

	b.Set(chart.Banner{Kind: chart.BannerError, Text: "backend down"})
	assert.Contains(t, b.View(now.Add(time.Hour)), "backend down")
}

func TestTableAutoWidthAndSelection(t *testing.T) {
	tbl := NewTable().
		AddColumn("ID", 4, lipgloss.Left).
		AddColumn("Price", 0, lipgloss.Right).
		SetEmptyText("No open positions").
		SetFocused(true)

	assert.Equal(t, "No open positions", strings.TrimSpace(tbl.View()))

	tbl.SetRows([][]string{{"a", "1.0000"}, {"b", "2.0000"}})
	tbl.MoveDown()
	assert.Equal(t, 1, tbl.GetSelectedRow())
	tbl.MoveDown()
	assert.Equal(t, 1, tbl.GetSelectedRow())

	tbl.SetRows([][]string{{"a", "1.0000"}})
	assert.Equal(t, 0, tbl.GetSelectedRow())
	assert.Contains(t, tbl.View(), "1.0000")
}
