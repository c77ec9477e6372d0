package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/config"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/session"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
	"github.com/rovshanmuradov/paper-trader/internal/ui/component"
	"github.com/rovshanmuradov/paper-trader/internal/ui/router"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
	"go.uber.org/zap"
)

// Order ticket field names.
const (
	FieldSymbol     = "symbol"
	FieldLotSize    = "lot_size"
	FieldStopLoss   = "stop_loss"
	FieldTakeProfit = "take_profit"
	FieldReplayDate = "replay_date"
)

// TradingScreen shows the chart, the order ticket, open positions and trade
// history.
type TradingScreen struct {
	services ui.ServiceProvider
	keyMap   ui.KeyMap
	logger   *zap.Logger

	header    *component.StatusHeader
	banner    *component.BannerView
	chart     *component.Sparkline
	ticket    *component.Form
	positions *component.Table
	history   *component.Table
	logs      *component.CompactLogViewer
	helpBar   *component.HelpBar

	openIDs  []string
	replay   string
	clock    time.Time
	showLogs bool
	showHelp bool

	width  int
	height int
}

// NewTradingScreen creates the trading screen
func NewTradingScreen(sp ui.ServiceProvider) *TradingScreen {
	s := &TradingScreen{
		services: sp,
		keyMap:   ui.DefaultKeyMap(),
		logger:   sp.GetLogger().Named("trading_screen"),
		header:   component.NewStatusHeader(),
		banner:   component.NewBannerView(),
		chart:    component.NewSparkline(60, 10).SetEmptyText("Waiting for market data..."),
		logs:     component.NewCompactLogViewer(sp.GetLogBuffer()),
	}

	s.ticket = component.NewForm().
		SetCompact(true).
		AddField(FieldSymbol, component.FieldTypeSelect, "Symbol", false, "").
		AddField(FieldLotSize, component.FieldTypeNumber, "Lot size", false, "0.01").
		AddField(FieldStopLoss, component.FieldTypeNumber, "Stop loss", false, "optional").
		AddField(FieldTakeProfit, component.FieldTypeNumber, "Take profit", false, "optional").
		AddField(FieldReplayDate, component.FieldTypeText, "Replay date", false, "YYYY-MM-DD")
	s.ticket.SetFieldOptions(FieldSymbol, sp.GetConfig().Symbols)
	s.ticket.SetFieldValue(FieldSymbol, sp.GetChart().Symbol())
	s.ticket.SetFieldValue(FieldLotSize, "0.01")
	s.ticket.Blur()

	s.positions = component.NewTable().
		AddColumn("ID", 10, lipgloss.Left).
		AddColumn("Symbol", 8, lipgloss.Left).
		AddColumn("Type", 5, lipgloss.Left).
		AddColumn("Size", 6, lipgloss.Right).
		AddColumn("Open", 0, lipgloss.Right).
		AddColumn("SL", 0, lipgloss.Right).
		AddColumn("TP", 0, lipgloss.Right).
		SetEmptyText(orders.NoPositionsText).
		SetFocused(true)

	s.history = component.NewTable().
		AddColumn("Symbol", 8, lipgloss.Left).
		AddColumn("Type", 5, lipgloss.Left).
		AddColumn("Size", 6, lipgloss.Right).
		AddColumn("Open", 0, lipgloss.Right).
		AddColumn("Close", 0, lipgloss.Right).
		AddColumn("P&L", 0, lipgloss.Right).
		SetEmptyText(orders.NoHistoryText).
		SetSelectable(false)

	s.helpBar = component.NewHelpBar().
		SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteTrading))

	s.syncHeader()
	return s
}

// Init loads the chart and the portfolio
func (s *TradingScreen) Init() tea.Cmd {
	s.syncHeader()
	if snap := s.services.GetOrders().Latest(); snap != nil {
		s.applySnapshot(snap)
	}
	return tea.Batch(
		ui.LoadChartCmd(s.services),
		ui.LoadPortfolioCmd(s.services),
	)
}

// Update handles input and controller results
func (s *TradingScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.ticket.Focused() {
			return s, s.handleTicketKey(msg)
		}
		return s, s.handleKey(msg)

	case ui.ClockMsg:
		s.clock = msg.Time
		s.header.SetTime(msg.Time)
		s.banner.Set(s.services.GetChart().Banner())
		if s.showLogs {
			s.logs.Refresh()
		}

	case ui.ChartLoadedMsg:
		c := s.services.GetChart()
		if msg.Symbol == c.Symbol() && msg.Timeframe == c.Timeframe() {
			s.chart.SetData(c.Closes())
			s.header.SetQuote(c.Quote())
		}
		s.banner.Set(c.Banner())

	case ui.PriceMsg:
		s.header.SetQuote(s.services.GetChart().Quote())

	case ui.PortfolioMsg:
		s.applySnapshot(msg.Snapshot)

	case ui.OrderResultMsg:
		if msg.Outcome.Snapshot != nil {
			s.applySnapshot(msg.Outcome.Snapshot)
		}
		s.syncHeader()
		return s, ui.Alert(msg.Outcome.Message)

	case ui.ReplayMsg:
		s.replay = replayText(msg)

	case ui.ExportedMsg:
		if msg.Err != nil {
			return s, ui.Alert("Export failed: " + msg.Err.Error())
		}
		return s, ui.Alert("Trade history exported to " + msg.Path)
	}

	return s, nil
}

func (s *TradingScreen) handleTicketKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "f2":
		return s.placeOrder(api.Buy)
	case "f3":
		return s.placeOrder(api.Sell)
	case "esc":
		s.ticket.Blur()
		return nil
	}

	var cmd tea.Cmd
	s.ticket, cmd = s.ticket.Update(msg)

	if symbol := s.ticket.GetValue(FieldSymbol); symbol != "" && symbol != s.services.GetChart().Symbol() {
		return tea.Batch(cmd, s.switchSymbol(symbol))
	}
	return cmd
}

func (s *TradingScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keyMap.Quit):
		return tea.Quit

	case key.Matches(msg, s.keyMap.Buy):
		return s.placeOrder(api.Buy)

	case key.Matches(msg, s.keyMap.Sell):
		return s.placeOrder(api.Sell)

	case key.Matches(msg, s.keyMap.CloseOrder):
		return s.closeSelected()

	case key.Matches(msg, s.keyMap.Up):
		s.positions.MoveUp()

	case key.Matches(msg, s.keyMap.Down):
		s.positions.MoveDown()

	case key.Matches(msg, s.keyMap.EditTicket):
		return s.ticket.Focus()

	case key.Matches(msg, s.keyMap.Timeframe):
		return s.toggleTimeframe()

	case key.Matches(msg, s.keyMap.NextSymbol):
		return s.cycleSymbol(1)

	case key.Matches(msg, s.keyMap.PrevSymbol):
		return s.cycleSymbol(-1)

	case key.Matches(msg, s.keyMap.Replay):
		date := strings.TrimSpace(s.ticket.GetValue(FieldReplayDate))
		if date == "" {
			return ui.Alert("Enter a replay date (YYYY-MM-DD) in the order ticket first")
		}
		s.replay = "Replaying " + date + "..."
		return ui.ReplayCmd(s.services, date)

	case key.Matches(msg, s.keyMap.Refresh):
		return tea.Batch(ui.LoadChartCmd(s.services), ui.LoadPortfolioCmd(s.services))

	case key.Matches(msg, s.keyMap.Export):
		return ui.ExportHistoryCmd(s.services)

	case key.Matches(msg, s.keyMap.Logout):
		return ui.LogoutCmd(s.services)

	case key.Matches(msg, s.keyMap.ToggleLogs):
		s.showLogs = !s.showLogs
		s.layout()
		if s.showLogs {
			s.logs.ScrollToBottom()
			s.logs.Refresh()
		}

	case key.Matches(msg, s.keyMap.Logs):
		return ui.Navigate(ui.RouteLogs)

	case key.Matches(msg, s.keyMap.Help):
		s.showHelp = !s.showHelp
	}
	return nil
}

func (s *TradingScreen) placeOrder(direction api.OrderType) tea.Cmd {
	form := orders.Form{
		Symbol:     s.ticket.GetValue(FieldSymbol),
		LotSize:    s.ticket.GetValue(FieldLotSize),
		StopLoss:   s.ticket.GetValue(FieldStopLoss),
		TakeProfit: s.ticket.GetValue(FieldTakeProfit),
	}
	s.logger.Debug("Submitting order", zap.String("type", string(direction)), zap.String("symbol", form.Symbol))
	return ui.PlaceOrderCmd(s.services, direction, form)
}

func (s *TradingScreen) closeSelected() tea.Cmd {
	idx := s.positions.GetSelectedRow()
	if idx < 0 || idx >= len(s.openIDs) {
		return nil
	}
	return ui.CloseOrderCmd(s.services, s.openIDs[idx])
}

func (s *TradingScreen) toggleTimeframe() tea.Cmd {
	c := s.services.GetChart()
	next := config.Timeframes[0]
	for i, tf := range config.Timeframes {
		if tf == c.Timeframe() {
			next = config.Timeframes[(i+1)%len(config.Timeframes)]
		}
	}
	c.SetTimeframe(next)
	return ui.LoadChartCmd(s.services)
}

func (s *TradingScreen) cycleSymbol(delta int) tea.Cmd {
	symbols := s.services.GetConfig().Symbols
	if len(symbols) < 2 {
		return nil
	}
	current := s.services.GetChart().Symbol()
	idx := 0
	for i, sym := range symbols {
		if sym == current {
			idx = i
		}
	}
	next := symbols[(idx+delta+len(symbols))%len(symbols)]
	s.ticket.SetFieldValue(FieldSymbol, next)
	return s.switchSymbol(next)
}

func (s *TradingScreen) switchSymbol(symbol string) tea.Cmd {
	c := s.services.GetChart()
	c.SetSymbol(symbol)
	s.chart.SetData(nil)
	s.replay = ""
	s.header.SetSymbol(symbol)
	s.header.SetQuote(c.Quote())
	return ui.LoadChartCmd(s.services)
}

func (s *TradingScreen) syncHeader() {
	user, ok := s.services.GetSession().Current()
	if ok {
		s.header.SetUser(session.WelcomeText(user), session.BalanceText(user))
	}
	c := s.services.GetChart()
	s.header.SetSymbol(c.Symbol())
	s.header.SetQuote(c.Quote())
}

func (s *TradingScreen) applySnapshot(snap *orders.Snapshot) {
	if snap == nil {
		return
	}

	open := orders.PositionRows(snap.Open)
	s.openIDs = make([]string, len(snap.Open))
	rows := make([][]string, len(open))
	for i, r := range open {
		s.openIDs[i] = snap.Open[i].ID
		rows[i] = []string{r.ID, r.Symbol, r.Type, r.Size, r.Open, r.StopLoss, r.TakeProfit}
	}
	s.positions.SetRows(rows)
	for i, r := range open {
		if r.Buy {
			s.positions.SetRowStyle(i, style.BuyStyle)
		} else {
			s.positions.SetRowStyle(i, style.SellStyle)
		}
	}

	closed := orders.HistoryRows(snap.History)
	rows = make([][]string, len(closed))
	for i, r := range closed {
		rows[i] = []string{r.Symbol, r.Type, r.Size, r.Open, r.Close, r.PnL}
	}
	s.history.SetRows(rows)
	for i, r := range closed {
		if r.Positive {
			s.history.SetRowStyle(i, style.ProfitStyle)
		} else {
			s.history.SetRowStyle(i, style.LossStyle)
		}
	}

	s.syncHeader()
}

func replayText(msg ui.ReplayMsg) string {
	if msg.Err != nil {
		return "Replay " + msg.Date + " failed: " + msg.Err.Error()
	}
	if msg.Bar == nil {
		return "Replay " + msg.Date + ": no data"
	}
	b := msg.Bar
	return fmt.Sprintf("Replay %s  O %s  H %s  L %s  C %s",
		b.Timestamp,
		chart.FormatPrice(b.Open), chart.FormatPrice(b.High),
		chart.FormatPrice(b.Low), chart.FormatPrice(b.Close))
}

// View renders the screen
func (s *TradingScreen) View() string {
	if s.showHelp {
		return s.helpView()
	}

	sections := []string{s.header.View()}
	if banner := s.banner.View(s.clock); banner != "" {
		sections = append(sections, banner)
	}

	sections = append(sections,
		style.AdaptiveJoinHorizontal(s.width, s.chartPanel(), s.ticketPanel()),
		style.AdaptiveJoinHorizontal(s.width, s.positionsPanel(), s.historyPanel()),
	)
	if s.showLogs {
		sections = append(sections, s.logs.View())
	}
	sections = append(sections, s.helpBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s *TradingScreen) chartPanel() string {
	c := s.services.GetChart()
	title := style.PanelTitleStyle.Render(fmt.Sprintf("%s · %s", c.Symbol(), c.Timeframe()))
	if s.chart.Len() > 1 {
		title += style.MutedStyle.Render(fmt.Sprintf("  %s %+.2f%%", s.chart.GetTrend(), s.chart.GetChangePercent()))
	}
	body := title + "\n" + s.chart.View()
	if s.replay != "" {
		body += "\n" + style.InfoStyle.Render(s.replay)
	}
	return style.PanelStyle.Width(s.chartWidth()).Render(body)
}

func (s *TradingScreen) ticketPanel() string {
	panel := style.PanelStyle
	if s.ticket.Focused() {
		panel = style.ActivePanelStyle
	}
	actions := style.BuyStyle.Render("[b] BUY") + "  " + style.SellStyle.Render("[s] SELL")
	hint := style.MutedStyle.Render("e edit · esc done · F2/F3 trade")
	body := style.PanelTitleStyle.Render("Order Ticket") + "\n" + s.ticket.View() + "\n\n" + actions + "\n" + hint
	return panel.Width(s.ticketWidth()).Render(body)
}

func (s *TradingScreen) positionsPanel() string {
	title := style.PanelTitleStyle.Render(fmt.Sprintf("Open Positions (%d)", s.positions.GetRowCount()))
	return style.PanelStyle.Width(s.halfWidth()).Render(title + "\n" + s.positions.View())
}

func (s *TradingScreen) historyPanel() string {
	title := style.PanelTitleStyle.Render("Trade History")
	return style.PanelStyle.Width(s.halfWidth()).Render(title + "\n" + s.history.View())
}

func (s *TradingScreen) helpView() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	for _, group := range s.keyMap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(style.HelpStyle.Render("? to close"))
	return style.ContainerStyle.Render(b.String())
}

func (s *TradingScreen) chartWidth() int {
	if s.width < 100 {
		return s.width - 4
	}
	return s.width*65/100 - 2
}

func (s *TradingScreen) ticketWidth() int {
	if s.width < 100 {
		return s.width - 4
	}
	return s.width - s.chartWidth() - 6
}

func (s *TradingScreen) halfWidth() int {
	if s.width < 100 {
		return s.width - 4
	}
	return s.width/2 - 4
}

func (s *TradingScreen) layout() {
	s.header.SetWidth(s.width)
	s.banner.SetWidth(s.width)
	s.helpBar.SetWidth(s.width)
	s.ticket.SetWidth(s.ticketWidth() - 2)
	s.positions.SetWidth(s.halfWidth() - 2)
	s.history.SetWidth(s.halfWidth() - 2)

	logsHeight := 0
	if s.showLogs {
		logsHeight = 8
		s.logs.SetSize(s.width, logsHeight)
	}

	chartHeight := s.height - 24 - logsHeight
	if chartHeight < 5 {
		chartHeight = 5
	}
	if chartHeight > 18 {
		chartHeight = 18
	}
	s.chart.SetSize(s.chartWidth()-14, chartHeight)
}

// SetSize sets the screen dimensions
func (s *TradingScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.layout()
}
