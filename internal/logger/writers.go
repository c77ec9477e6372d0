package logger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrWriterClosed is returned by WriteRecord after Close.
var ErrWriterClosed = errors.New("csv writer closed")

// SafeCSVWriter appends CSV records to a file from any goroutine. Records are
// buffered and reach the disk on the flush interval, on Flush, or on Close.
type SafeCSVWriter struct {
	mu     sync.Mutex
	writer *csv.Writer
	file   *os.File
	path   string
	logger *zap.Logger

	dirty  bool
	closed bool

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error

	records uint64
	flushes uint64
}

// NewSafeCSVWriter opens filePath for appending. header is written only when
// the file is new or empty.
func NewSafeCSVWriter(filePath string, header []string, flushInterval time.Duration, logger *zap.Logger) (*SafeCSVWriter, error) {
	if flushInterval <= 0 {
		return nil, fmt.Errorf("invalid flush interval: %s", flushInterval)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	w := &SafeCSVWriter{
		writer: csv.NewWriter(file),
		file:   file,
		path:   filePath,
		logger: logger,
		stop:   make(chan struct{}),
	}

	if info.Size() == 0 && len(header) > 0 {
		if err := w.writer.Write(header); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		w.writer.Flush()
		if err := w.writer.Error(); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	w.wg.Add(1)
	go w.flushLoop(flushInterval)

	return w, nil
}

// WriteRecord buffers one record.
func (w *SafeCSVWriter) WriteRecord(record []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.records++
	w.dirty = true
	return nil
}

// Flush writes buffered records and syncs the file. It is a no-op when
// nothing was written since the last flush.
func (w *SafeCSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *SafeCSVWriter) flushLocked() error {
	if !w.dirty || w.closed {
		return nil
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	w.dirty = false
	w.flushes++
	return nil
}

func (w *SafeCSVWriter) flushLoop(interval time.Duration) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				w.logger.Error("Periodic CSV flush failed",
					zap.String("file", w.path),
					zap.Error(err))
			}
		case <-w.stop:
			return
		}
	}
}

// Close flushes what is left and closes the file. Calling it again returns
// the first result.
func (w *SafeCSVWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.stop)
		w.wg.Wait()

		w.mu.Lock()
		defer w.mu.Unlock()

		flushErr := w.flushLocked()
		w.closed = true
		if err := w.file.Close(); err != nil && flushErr == nil {
			flushErr = fmt.Errorf("failed to close file: %w", err)
		}
		w.closeErr = flushErr

		w.logger.Debug("CSV writer closed",
			zap.String("file", w.path),
			zap.Uint64("records", w.records),
			zap.Uint64("flushes", w.flushes))
	})
	return w.closeErr
}

// GetStats returns the records written and the flushes that hit the disk
// since the writer was opened.
func (w *SafeCSVWriter) GetStats() (records, flushes uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.records, w.flushes
}
