package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/session"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
	"github.com/rovshanmuradov/paper-trader/internal/ui/component"
	"github.com/rovshanmuradov/paper-trader/internal/ui/router"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// AuthScreen is the login or the register form.
type AuthScreen struct {
	services ui.ServiceProvider
	route    ui.Route
	keyMap   ui.KeyMap

	form    *component.Form
	helpBar *component.HelpBar

	message string
	pending bool

	width  int
	height int
}

// NewLoginScreen creates the login screen
func NewLoginScreen(sp ui.ServiceProvider) *AuthScreen {
	return newAuthScreen(sp, ui.RouteLogin)
}

// NewRegisterScreen creates the registration screen
func NewRegisterScreen(sp ui.ServiceProvider) *AuthScreen {
	return newAuthScreen(sp, ui.RouteRegister)
}

func newAuthScreen(sp ui.ServiceProvider, route ui.Route) *AuthScreen {
	s := &AuthScreen{
		services: sp,
		route:    route,
		keyMap:   ui.DefaultKeyMap(),
	}

	s.form = component.NewForm().
		AddField("username", component.FieldTypeText, "Username", false, "username").
		AddField("password", component.FieldTypePassword, "Password", false, "password")

	s.helpBar = component.NewHelpBar().
		SetKeyBindings(s.keyMap.ContextualHelp(route))

	return s
}

// Route reports whether this is the login or the register screen.
func (s *AuthScreen) Route() ui.Route {
	return s.route
}

// Message returns the status line under the form.
func (s *AuthScreen) Message() string {
	return s.message
}

// Init initializes the screen
func (s *AuthScreen) Init() tea.Cmd {
	return s.form.Focus()
}

// Update handles input and authentication results
func (s *AuthScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.AuthResultMsg:
		s.pending = false
		if msg.Err != nil {
			s.message, _ = session.IsFailure(msg.Err)
			if s.message == "" {
				s.message = msg.Err.Error()
			}
		} else {
			s.message = ""
		}
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.SwitchAuth):
			if s.route == ui.RouteLogin {
				return s, ui.Navigate(ui.RouteRegister)
			}
			return s, ui.Navigate(ui.RouteLogin)

		case key.Matches(msg, s.keyMap.Submit):
			return s, s.submit()

		case key.Matches(msg, s.keyMap.Enter) && s.form.FocusedField() == "password":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s *AuthScreen) submit() tea.Cmd {
	if s.pending {
		return nil
	}
	s.pending = true
	if s.route == ui.RouteLogin {
		s.message = "Signing in..."
	} else {
		s.message = "Creating account..."
	}

	username := s.form.GetValue("username")
	password := s.form.GetValue("password")
	if s.route == ui.RouteRegister {
		return ui.RegisterCmd(s.services, username, password)
	}
	return ui.LoginCmd(s.services, username, password)
}

// View renders the screen
func (s *AuthScreen) View() string {
	title := "Login"
	link := "No account? ctrl+r to register"
	if s.route == ui.RouteRegister {
		title = "Register"
		link = "Have an account? ctrl+r to login"
	}

	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Paper Trader · " + title))
	b.WriteString("\n")
	b.WriteString(style.SubtitleStyle.Render("Demo trading against " + s.services.GetConfig().APIBaseURL))
	b.WriteString("\n\n")
	b.WriteString(s.form.View())
	b.WriteString("\n\n")

	if s.message != "" {
		if s.pending {
			b.WriteString(style.InfoStyle.Render(s.message))
		} else {
			b.WriteString(style.FormErrorStyle.Render(s.message))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(style.LinkStyle.Render(link))

	panel := style.ActivePanelStyle.Render(b.String())
	body := lipgloss.Place(s.width, s.height-3, lipgloss.Center, lipgloss.Center, panel)
	return lipgloss.JoinVertical(lipgloss.Left, body, s.helpBar.View())
}

// SetSize sets the screen dimensions
func (s *AuthScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.form.SetWidth(44)
	s.helpBar.SetWidth(width)
}
