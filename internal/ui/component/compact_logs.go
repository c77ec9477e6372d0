package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/paper-trader/internal/logger"
	"github.com/rovshanmuradov/paper-trader/internal/sanitize"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// LogFilter defines what log levels to show
type LogFilter struct {
	ShowError   bool
	ShowWarning bool
	ShowInfo    bool
	ShowDebug   bool
}

// CompactLogViewer shows the tail of the in-memory log buffer.
type CompactLogViewer struct {
	buffer   *logger.LogBuffer
	viewport viewport.Model
	filter   LogFilter
	style    style.LogStyles
	width    int
	height   int
	limit    int
	title    string
	follow   bool
}

// NewCompactLogViewer creates a new compact log viewer
func NewCompactLogViewer(logBuffer *logger.LogBuffer) *CompactLogViewer {
	return &CompactLogViewer{
		buffer: logBuffer,
		title:  "Recent Logs",
		limit:  50,
		follow: true,
		filter: LogFilter{
			ShowError:   true,
			ShowWarning: true,
			ShowInfo:    true,
		},
		style:    style.NewLogStyles(style.DefaultPalette()),
		viewport: viewport.New(50, 4),
	}
}

// SetTitle sets the pane title
func (clv *CompactLogViewer) SetTitle(title string) {
	clv.title = title
}

// SetLimit sets how many buffered entries are read per refresh; 0 reads all.
func (clv *CompactLogViewer) SetLimit(limit int) {
	clv.limit = limit
}

// SetSize sets the component dimensions
func (clv *CompactLogViewer) SetSize(width, height int) {
	clv.width = width
	clv.height = height

	viewportHeight := height - 3
	if viewportHeight < 2 {
		viewportHeight = 2
	}
	clv.viewport.Width = width - 4
	clv.viewport.Height = viewportHeight
	clv.Refresh()
}

// ToggleLogLevel toggles a specific log level
func (clv *CompactLogViewer) ToggleLogLevel(level string) {
	switch level {
	case "error":
		clv.filter.ShowError = !clv.filter.ShowError
	case "warning":
		clv.filter.ShowWarning = !clv.filter.ShowWarning
	case "info":
		clv.filter.ShowInfo = !clv.filter.ShowInfo
	case "debug":
		clv.filter.ShowDebug = !clv.filter.ShowDebug
	}
	clv.Refresh()
}

// Update forwards scrolling input to the viewport.
func (clv *CompactLogViewer) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	clv.viewport, cmd = clv.viewport.Update(msg)
	clv.follow = clv.viewport.AtBottom()
	return cmd
}

// View renders the compact log viewer
func (clv *CompactLogViewer) View() string {
	header := clv.style.Title.Render(clv.title) + " " +
		clv.style.Timestamp.Render(clv.GetFilterStatus())

	container := clv.style.Container
	if clv.width > 2 {
		container = container.Width(clv.width - 2)
	}
	return container.Render(header + "\n" + clv.viewport.View())
}

// Refresh reloads the viewport content from the log buffer. It keeps
// following the tail unless the user scrolled away from it.
func (clv *CompactLogViewer) Refresh() {
	if clv.buffer == nil {
		clv.viewport.SetContent("No log buffer available")
		return
	}

	var lines []string
	for _, entry := range clv.buffer.GetRecentLogs(clv.limit) {
		if clv.shouldShowEntry(entry) {
			lines = append(lines, clv.formatLogEntry(entry))
		}
	}

	if len(lines) == 0 {
		clv.viewport.SetContent("No logs match current filter")
		return
	}

	clv.viewport.SetContent(strings.Join(lines, "\n"))
	if clv.follow {
		clv.viewport.GotoBottom()
	}
}

func (clv *CompactLogViewer) shouldShowEntry(entry logger.LogEntry) bool {
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		return clv.filter.ShowError
	case "warning", "warn":
		return clv.filter.ShowWarning
	case "debug":
		return clv.filter.ShowDebug
	default:
		return clv.filter.ShowInfo
	}
}

func (clv *CompactLogViewer) formatLogEntry(entry logger.LogEntry) string {
	timestamp := clv.style.Timestamp.Render(entry.Timestamp.Format("15:04:05"))
	message := sanitize.Text(entry.Message)

	var styled string
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		styled = clv.style.Error.Render(message)
	case "warning", "warn":
		styled = clv.style.Warning.Render(message)
	case "debug":
		styled = clv.style.Debug.Render(message)
	default:
		styled = clv.style.Info.Render(message)
	}

	if entry.Logger != "" {
		return fmt.Sprintf("%s %s %s", timestamp, clv.style.Logger.Render(entry.Logger), styled)
	}
	return fmt.Sprintf("%s %s", timestamp, styled)
}

// GetHeight returns the component height for layout calculations
func (clv *CompactLogViewer) GetHeight() int {
	return clv.height
}

// GetFilterStatus returns current filter status as string
func (clv *CompactLogViewer) GetFilterStatus() string {
	var active []string
	if clv.filter.ShowError {
		active = append(active, "Error")
	}
	if clv.filter.ShowWarning {
		active = append(active, "Warning")
	}
	if clv.filter.ShowInfo {
		active = append(active, "Info")
	}
	if clv.filter.ShowDebug {
		active = append(active, "Debug")
	}

	if len(active) == 0 {
		return "(no levels)"
	}
	return fmt.Sprintf("(%s)", strings.Join(active, ", "))
}

// ScrollToBottom scrolls to the newest entry and resumes following.
func (clv *CompactLogViewer) ScrollToBottom() {
	clv.follow = true
	clv.viewport.GotoBottom()
}
