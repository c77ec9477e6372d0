package export

import (
	"time"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// JournalHeaders is the column layout of the trade journal.
var JournalHeaders = []string{"time", "event", "order_id", "symbol", "type", "lot_size", "price", "pnl"}

// Journal appends placed and closed orders to a CSV file as they happen. It
// satisfies orders.Journal.
type Journal struct {
	writer *logger.SafeCSVWriter
	now    func() time.Time
}

// OpenJournal opens (or creates) the journal at path.
func OpenJournal(path string, flushInterval time.Duration, log *zap.Logger) (*Journal, error) {
	w, err := logger.NewSafeCSVWriter(path, JournalHeaders, flushInterval, log.Named("journal"))
	if err != nil {
		return nil, err
	}
	return &Journal{writer: w, now: time.Now}, nil
}

// RecordPlaced appends an "open" row.
func (j *Journal) RecordPlaced(order api.Position) error {
	return j.writer.WriteRecord([]string{
		j.now().Format(time.RFC3339),
		"open",
		order.ID,
		order.Symbol,
		string(order.Type),
		order.LotSize.String(),
		order.OpenPrice.StringFixed(4),
		"",
	})
}

// RecordClosed appends a "close" row. The close response carries only the
// realised P&L, so the instrument columns stay empty.
func (j *Journal) RecordClosed(orderID string, pnl decimal.Decimal) error {
	return j.writer.WriteRecord([]string{
		j.now().Format(time.RFC3339),
		"close",
		orderID,
		"",
		"",
		"",
		"",
		pnl.StringFixed(2),
	})
}

// Close flushes and closes the file.
func (j *Journal) Close() error {
	return j.writer.Close()
}
