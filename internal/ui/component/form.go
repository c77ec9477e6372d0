package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypePassword
	FieldTypeSelect
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Options     []string // For select fields
	Placeholder string
	Required    bool
	Error       string

	textInput   textinput.Model
	selectedIdx int
}

func (f *FormField) isText() bool {
	return f.Type != FieldTypeSelect
}

// Form represents a form component with multiple fields
type Form struct {
	fields     []FormField
	focusIndex int
	focused    bool
	width      int
	compact    bool

	labelStyle   lipgloss.Style
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewForm creates a new form component. The form starts focused.
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		fields:  make([]FormField, 0),
		focused: true,

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			MarginRight(1),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 24
	ti.Placeholder = placeholder
	ti.Prompt = ""

	switch fieldType {
	case FieldTypePassword:
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	case FieldTypeNumber:
		if placeholder == "" {
			ti.Placeholder = "0"
		}
	}

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	})

	if len(f.fields) == 1 && f.focused {
		f.focusCurrent()
	}
	return f
}

// SetCompact renders each field on a single "label value" line.
func (f *Form) SetCompact(compact bool) *Form {
	f.compact = compact
	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

// SetFieldValue sets the value of a field. For select fields the value
// must be one of the options.
func (f *Form) SetFieldValue(name, value string) *Form {
	field := f.field(name)
	if field == nil {
		return f
	}
	if field.Type == FieldTypeSelect {
		for i, opt := range field.Options {
			if opt == value {
				field.selectedIdx = i
				field.Value = value
			}
		}
		return f
	}
	field.Value = value
	field.textInput.SetValue(value)
	return f
}

// SetFieldOptions sets options for select fields
func (f *Form) SetFieldOptions(name string, options []string) *Form {
	field := f.field(name)
	if field == nil || field.Type != FieldTypeSelect {
		return f
	}
	field.Options = options
	field.selectedIdx = 0
	field.Value = ""
	if len(options) > 0 {
		field.Value = options[0]
	}
	return f
}

// SetFieldError attaches an inline error to a field.
func (f *Form) SetFieldError(name, message string) *Form {
	if field := f.field(name); field != nil {
		field.Error = message
	}
	return f
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 4
	if f.compact {
		inputWidth = width - f.labelWidth() - 5
	}
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}

// Focus gives keyboard focus back to the form at its current field.
func (f *Form) Focus() tea.Cmd {
	f.focused = true
	return f.focusCurrent()
}

// Blur removes keyboard focus from every field.
func (f *Form) Blur() {
	f.focused = false
	for i := range f.fields {
		f.fields[i].textInput.Blur()
	}
}

// Focused reports whether the form receives key input.
func (f *Form) Focused() bool {
	return f.focused
}

// FocusedField returns the name of the field under the cursor.
func (f *Form) FocusedField() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 || !f.focused {
		return f, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		field := &f.fields[f.focusIndex]
		switch keyMsg.String() {
		case "tab", "down":
			if keyMsg.String() == "down" && field.Type == FieldTypeSelect {
				f.shiftSelect(1)
				return f, nil
			}
			return f, f.moveFocus(1)
		case "shift+tab", "up":
			if keyMsg.String() == "up" && field.Type == FieldTypeSelect {
				f.shiftSelect(-1)
				return f, nil
			}
			return f, f.moveFocus(-1)
		case "enter":
			if field.Type == FieldTypeSelect {
				f.shiftSelect(1)
				return f, nil
			}
			return f, f.moveFocus(1)
		case "left", "right":
			if field.Type == FieldTypeSelect {
				if keyMsg.String() == "left" {
					f.shiftSelect(-1)
				} else {
					f.shiftSelect(1)
				}
				return f, nil
			}
		}
	}

	field := &f.fields[f.focusIndex]
	if !field.isText() {
		return f, nil
	}

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	field.Value = field.textInput.Value()
	if _, ok := msg.(tea.KeyMsg); ok {
		field.Error = ""
	}
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return ""
	}

	labelWidth := f.labelWidth()
	var content strings.Builder

	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}

		fieldStyle := f.inputStyle
		if f.focused && i == f.focusIndex {
			fieldStyle = f.focusedStyle
		}

		var value string
		if field.isText() {
			value = field.textInput.View()
		} else {
			value = field.Value
			if f.focused && i == f.focusIndex {
				value = "◀ " + value + " ▶"
			}
		}

		if f.compact {
			marker := "  "
			if f.focused && i == f.focusIndex {
				marker = "▸ "
			}
			line := marker + f.labelStyle.Width(labelWidth).Render(label) + value
			content.WriteString(line)
		} else {
			content.WriteString(f.labelStyle.Render(label))
			content.WriteString("\n")
			content.WriteString(fieldStyle.Render(value))
		}

		if field.Error != "" {
			content.WriteString("\n")
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
		}

		if i < len(f.fields)-1 {
			content.WriteString("\n")
			if !f.compact {
				content.WriteString("\n")
			}
		}
	}

	return content.String()
}

func (f *Form) labelWidth() int {
	w := 0
	for _, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		if lw := lipgloss.Width(label); lw > w {
			w = lw
		}
	}
	return w + 1
}

func (f *Form) focusCurrent() tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	field := &f.fields[f.focusIndex]
	if field.isText() {
		return field.textInput.Focus()
	}
	return nil
}

func (f *Form) moveFocus(delta int) tea.Cmd {
	f.fields[f.focusIndex].textInput.Blur()
	f.focusIndex = (f.focusIndex + delta + len(f.fields)) % len(f.fields)
	return f.focusCurrent()
}

func (f *Form) shiftSelect(delta int) {
	field := &f.fields[f.focusIndex]
	if len(field.Options) == 0 {
		return
	}
	field.selectedIdx = (field.selectedIdx + delta + len(field.Options)) % len(field.Options)
	field.Value = field.Options[field.selectedIdx]
}

// Validate checks required fields and returns false when any is empty.
func (f *Form) Validate() bool {
	valid := true
	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""
		if field.Required && strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
		}
	}
	return valid
}

// GetValues returns all form field values as a map
func (f *Form) GetValues() map[string]string {
	values := make(map[string]string)
	for _, field := range f.fields {
		values[field.Name] = field.Value
	}
	return values
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return field.Value
	}
	return ""
}

// Reset clears text fields and rewinds selects to their first option.
func (f *Form) Reset() *Form {
	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""
		field.textInput.Blur()
		field.textInput.SetValue("")
		field.Value = ""
		field.selectedIdx = 0
		if field.Type == FieldTypeSelect && len(field.Options) > 0 {
			field.Value = field.Options[0]
		}
	}

	f.focusIndex = 0
	if f.focused {
		f.focusCurrent()
	}
	return f
}
