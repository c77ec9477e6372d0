package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSafeCSVWriterHeaderOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "trades.csv")
	header := []string{"time", "event", "symbol"}

	w, err := NewSafeCSVWriter(path, header, time.Hour, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"t1", "placed", "XAUUSD"}))
	require.NoError(t, w.Close())

	w, err = NewSafeCSVWriter(path, header, time.Hour, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"t2", "closed", "XAUUSD"}))
	records, _ := w.GetStats()
	assert.Equal(t, uint64(1), records)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{"time,event,symbol", "t1,placed,XAUUSD", "t2,closed,XAUUSD"}, lines)
}

func TestSafeCSVWriterFlushAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	w, err := NewSafeCSVWriter(path, nil, time.Hour, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.Flush())
	_, flushes := w.GetStats()
	assert.Zero(t, flushes, "nothing written, nothing flushed")

	require.NoError(t, w.WriteRecord([]string{"a", "b"}))
	require.NoError(t, w.Flush())
	records, flushes := w.GetStats()
	assert.Equal(t, uint64(1), records)
	assert.Equal(t, uint64(1), flushes)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteRecord([]string{"c"}), ErrWriterClosed)
}

func TestSafeCSVWriterRejectsBadInterval(t *testing.T) {
	_, err := NewSafeCSVWriter(filepath.Join(t.TempDir(), "x.csv"), nil, 0, zap.NewNop())
	assert.Error(t, err)
}
