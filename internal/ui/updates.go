package ui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// UpdateSender provides non-blocking UI update sending with statistics
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
}

// NewUpdateSender creates a new non-blocking update sender
func NewUpdateSender(msgChan chan tea.Msg, logger *zap.Logger) *UpdateSender {
	us := &UpdateSender{
		msgChan:       msgChan,
		logger:        logger,
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	go us.logStats()

	return us
}

// SendUpdate sends a message to UI without blocking
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		// Never block a poller on a slow UI.
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Warn("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender
func (us *UpdateSender) Close() {
	close(us.stopStats)
}

// Bus delivers messages from background goroutines (pollers) to the UI.
type Bus struct {
	ch     chan tea.Msg
	sender *UpdateSender
}

// NewBus creates a bus with the given capacity.
func NewBus(capacity int, logger *zap.Logger) *Bus {
	ch := make(chan tea.Msg, capacity)
	return &Bus{
		ch:     ch,
		sender: NewUpdateSender(ch, logger.Named("ui_bus")),
	}
}

// Send enqueues msg without blocking; it is dropped when the bus is full.
func (b *Bus) Send(msg tea.Msg) {
	b.sender.SendUpdate(msg)
}

// Listen returns a command that waits for the next bus message and wraps it
// in a BusMsg.
func (b *Bus) Listen() tea.Cmd {
	return func() tea.Msg {
		return BusMsg{Msg: <-b.ch}
	}
}

// GetStats returns bus statistics
func (b *Bus) GetStats() (sent, dropped uint64) {
	return b.sender.GetStats()
}

// Close stops the statistics goroutine.
func (b *Bus) Close() {
	b.sender.Close()
}
