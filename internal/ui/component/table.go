package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/sanitize"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// TableColumn represents a column configuration. Width 0 means share the
// remaining width with the other auto columns.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data  []string
	Style lipgloss.Style
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	width       int
	selectedRow int
	emptyText   string

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	emptyStyle       lipgloss.Style

	showHeaders bool
	selectable  bool
	focused     bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary),

		emptyStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),

		showHeaders: true,
		selectable:  true,
	}
}

// AddColumn adds a column to the table
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetEmptyText sets what is shown instead of rows when there are none.
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

// SetRows replaces all rows. Selection is kept when still in range.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = make([]TableRow, len(rows))
	for i, rowData := range rows {
		t.rows[i] = TableRow{
			Data:  rowData,
			Style: t.rowStyle,
		}
	}
	if t.selectedRow >= len(t.rows) {
		t.selectedRow = len(t.rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// SetRowStyle sets a custom style for a specific row
func (t *Table) SetRowStyle(rowIndex int, s lipgloss.Style) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rows) {
		t.rows[rowIndex].Style = s
	}
	return t
}

// SetWidth sets the table width used to size auto columns.
func (t *Table) SetWidth(width int) *Table {
	t.width = width
	return t
}

// SetSelectable enables/disables row selection
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// SetFocused controls whether the selection highlight is drawn.
func (t *Table) SetFocused(focused bool) *Table {
	t.focused = focused
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectable && t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectable && t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// GetRowCount returns the number of rows
func (t *Table) GetRowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.rows) == 0 && t.emptyText != "" {
		return t.emptyStyle.Render(t.emptyText)
	}

	widths := t.columnWidths()
	var content strings.Builder

	if t.showHeaders {
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			cells[i] = renderCell(col.Header, widths[i], col.Align, t.headerStyle)
		}
		content.WriteString(strings.Join(cells, " "))
		content.WriteString("\n")
	}

	for rowIndex, row := range t.rows {
		rowStyle := row.Style
		if t.selectable && t.focused && rowIndex == t.selectedRow {
			rowStyle = t.selectedRowStyle
		}

		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			cellData := ""
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			cells[i] = renderCell(cellData, widths[i], col.Align, rowStyle)
		}
		content.WriteString(strings.Join(cells, rowStyle.Render(" ")))
		if rowIndex < len(t.rows)-1 {
			content.WriteString("\n")
		}
	}

	return content.String()
}

func renderCell(content string, width int, align lipgloss.Position, s lipgloss.Style) string {
	content = sanitize.Truncate(content, width)
	return s.Width(width).Align(align).Render(content)
}

// columnWidths resolves auto widths without modifying the column config.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	explicit, auto := 0, 0
	for i, col := range t.columns {
		widths[i] = col.Width
		if col.Width > 0 {
			explicit += col.Width
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}

	available := t.width - explicit - (len(t.columns) - 1)
	share := 8
	if available > 0 && available/auto > share {
		share = available / auto
	}
	for i := range widths {
		if widths[i] <= 0 {
			widths[i] = share
		}
	}
	return widths
}
