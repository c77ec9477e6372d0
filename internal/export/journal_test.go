package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJournalRecordsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")
	j, err := OpenJournal(path, time.Hour, zap.NewNop())
	require.NoError(t, err)
	j.now = func() time.Time { return baseTime }

	require.NoError(t, j.RecordPlaced(api.Position{
		ID: "o-1", Symbol: "XAUUSD", Type: api.Buy, LotSize: dec("0.1"), OpenPrice: dec("1900.5"),
	}))
	require.NoError(t, j.RecordClosed("o-1", dec("-3.456")))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(JournalHeaders, ","), lines[0])
	assert.Equal(t, "2024-03-01T09:00:00Z,open,o-1,XAUUSD,buy,0.1,1900.5000,", lines[1])
	assert.Equal(t, "2024-03-01T09:00:00Z,close,o-1,,,,,-3.46", lines[2])
}
