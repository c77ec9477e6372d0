package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	StartTime    time.Time
	EndTime      time.Time
	SymbolFilter string
	TypeFilter   api.OrderType
	OnlyWinners  bool
	OutputDir    string
}

// Trade is a closed order with its close time parsed.
type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Type       api.OrderType   `json:"type"`
	LotSize    decimal.Decimal `json:"lot_size"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	ClosePrice decimal.Decimal `json:"close_price"`
	PnL        decimal.Decimal `json:"pnl"`
	OpenTime   time.Time       `json:"open_time"`
	CloseTime  time.Time       `json:"close_time"`
}

// CSVHeaders is the column order of ToCSV.
func CSVHeaders() []string {
	return []string{"id", "symbol", "type", "lot_size", "open_price", "close_price", "pnl", "open_time", "close_time"}
}

// ToCSV renders the trade as a CSV record.
func (t Trade) ToCSV() []string {
	return []string{
		t.ID,
		t.Symbol,
		string(t.Type),
		t.LotSize.String(),
		t.OpenPrice.StringFixed(4),
		t.ClosePrice.StringFixed(4),
		t.PnL.StringFixed(2),
		formatTime(t.OpenTime),
		formatTime(t.CloseTime),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// TradesFromPositions converts closed orders. Orders that are still open are
// skipped.
func TradesFromPositions(positions []api.Position) []Trade {
	trades := make([]Trade, 0, len(positions))
	for _, p := range positions {
		if !p.ClosePrice.Valid && p.CloseTime == "" {
			continue
		}
		openTime, _ := api.ParseTimestamp(p.OpenTime)
		closeTime, _ := api.ParseTimestamp(p.CloseTime)
		trades = append(trades, Trade{
			ID:         p.ID,
			Symbol:     p.Symbol,
			Type:       p.Type,
			LotSize:    p.LotSize,
			OpenPrice:  p.OpenPrice,
			ClosePrice: p.ClosePrice.Decimal,
			PnL:        p.PnL.Decimal,
			OpenTime:   openTime,
			CloseTime:  closeTime,
		})
	}
	return trades
}

// TradeExporter handles trade export functionality
type TradeExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewTradeExporter creates a new trade exporter
func NewTradeExporter(logger *zap.Logger) *TradeExporter {
	return &TradeExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// ExportTrades exports trades based on the provided options
func (te *TradeExporter) ExportTrades(trades []Trade, options ExportOptions) (string, error) {
	filtered := te.filterTrades(trades, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no trades match the export criteria")
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CloseTime.Before(filtered[j].CloseTime)
	})

	filename := te.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = te.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = te.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	te.logger.Info("Trades exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filterTrades applies filters to the trade list
func (te *TradeExporter) filterTrades(trades []Trade, options ExportOptions) []Trade {
	var filtered []Trade

	for _, trade := range trades {
		if !options.StartTime.IsZero() && trade.CloseTime.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && !trade.CloseTime.Before(options.EndTime) {
			continue
		}
		if options.SymbolFilter != "" && trade.Symbol != options.SymbolFilter {
			continue
		}
		if options.TypeFilter != "" && trade.Type != options.TypeFilter {
			continue
		}
		if options.OnlyWinners && !trade.PnL.IsPositive() {
			continue
		}
		filtered = append(filtered, trade)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (te *TradeExporter) generateFilename(options ExportOptions) string {
	timestamp := te.now().Format("20060102_150405")

	prefix := "trades_all"
	if options.TypeFilter != "" {
		prefix = fmt.Sprintf("trades_%s", options.TypeFilter)
	}
	if options.SymbolFilter != "" {
		prefix += "_" + options.SymbolFilter
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// exportToCSV exports trades to CSV format
func (te *TradeExporter) exportToCSV(trades []Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, trade := range trades {
		if err := writer.Write(trade.ToCSV()); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// exportToJSON exports trades to JSON format
func (te *TradeExporter) exportToJSON(trades []Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time     `json:"export_time"`
		TradeCount int           `json:"trade_count"`
		Trades     []Trade       `json:"trades"`
		Summary    ExportSummary `json:"summary"`
	}{
		ExportTime: te.now(),
		TradeCount: len(trades),
		Trades:     trades,
		Summary:    CalculateSummary(trades),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// ExportSummary contains summary statistics for exported trades
type ExportSummary struct {
	TotalTrades   int             `json:"total_trades"`
	BuyCount      int             `json:"buy_count"`
	SellCount     int             `json:"sell_count"`
	UniqueSymbols int             `json:"unique_symbols"`
	TotalLots     decimal.Decimal `json:"total_lots"`
	TotalPnL      decimal.Decimal `json:"total_pnl"`
	WinCount      int             `json:"win_count"`
	LossCount     int             `json:"loss_count"`
	WinRate       float64         `json:"win_rate"`
	AvgPnL        decimal.Decimal `json:"avg_pnl"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
}

// CalculateSummary aggregates trades, which must be sorted by close time for
// the date range to be meaningful.
func CalculateSummary(trades []Trade) ExportSummary {
	summary := ExportSummary{
		TotalTrades: len(trades),
	}

	if len(trades) == 0 {
		return summary
	}

	summary.StartDate = trades[0].CloseTime
	summary.EndDate = trades[len(trades)-1].CloseTime

	symbols := make(map[string]bool)

	for _, trade := range trades {
		symbols[trade.Symbol] = true

		switch trade.Type {
		case api.Buy:
			summary.BuyCount++
		case api.Sell:
			summary.SellCount++
		}

		summary.TotalLots = summary.TotalLots.Add(trade.LotSize)
		summary.TotalPnL = summary.TotalPnL.Add(trade.PnL)

		if trade.PnL.IsPositive() {
			summary.WinCount++
		} else if trade.PnL.IsNegative() {
			summary.LossCount++
		}
	}

	summary.UniqueSymbols = len(symbols)
	summary.WinRate = float64(summary.WinCount) / float64(len(trades)) * 100
	summary.AvgPnL = summary.TotalPnL.Div(decimal.NewFromInt(int64(len(trades)))).Round(2)

	return summary
}

// DailyReport represents a daily trading report
type DailyReport struct {
	Date            time.Time     `json:"date"`
	TradeCount      int           `json:"trade_count"`
	Summary         ExportSummary `json:"summary"`
	HourlyBreakdown []HourlyStats `json:"hourly_breakdown"`
	Trades          []Trade       `json:"trades"`
}

// HourlyStats represents trading statistics for an hour
type HourlyStats struct {
	Hour       int             `json:"hour"`
	TradeCount int             `json:"trade_count"`
	BuyCount   int             `json:"buy_count"`
	SellCount  int             `json:"sell_count"`
	Lots       decimal.Decimal `json:"lots"`
	PnL        decimal.Decimal `json:"pnl"`
}

// ExportDailyReport writes a JSON report of the trades closed on date. It
// returns "" without error when there were none.
func (te *TradeExporter) ExportDailyReport(trades []Trade, date time.Time, outputDir string) (string, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	options := ExportOptions{
		Format:    FormatJSON,
		StartTime: startOfDay,
		EndTime:   endOfDay,
		OutputDir: outputDir,
	}

	filtered := te.filterTrades(trades, options)
	if len(filtered) == 0 {
		te.logger.Info("No trades for daily report", zap.Time("date", startOfDay))
		return "", nil
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CloseTime.Before(filtered[j].CloseTime)
	})

	report := DailyReport{
		Date:            startOfDay,
		TradeCount:      len(filtered),
		Trades:          filtered,
		Summary:         CalculateSummary(filtered),
		HourlyBreakdown: calculateHourlyBreakdown(filtered),
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, fmt.Sprintf("daily_report_%s.json", startOfDay.Format("20060102")))

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	te.logger.Info("Daily report exported",
		zap.String("file", outputPath),
		zap.Time("date", startOfDay),
		zap.Int("trades", len(filtered)))

	return outputPath, nil
}

func calculateHourlyBreakdown(trades []Trade) []HourlyStats {
	hourlyMap := make(map[int]*HourlyStats)

	for _, trade := range trades {
		hour := trade.CloseTime.Hour()

		stats, exists := hourlyMap[hour]
		if !exists {
			stats = &HourlyStats{Hour: hour}
			hourlyMap[hour] = stats
		}

		stats.TradeCount++
		stats.Lots = stats.Lots.Add(trade.LotSize)
		stats.PnL = stats.PnL.Add(trade.PnL)

		switch trade.Type {
		case api.Buy:
			stats.BuyCount++
		case api.Sell:
			stats.SellCount++
		}
	}

	var breakdown []HourlyStats
	for hour := 0; hour < 24; hour++ {
		if stats, exists := hourlyMap[hour]; exists {
			breakdown = append(breakdown, *stats)
		}
	}

	return breakdown
}
