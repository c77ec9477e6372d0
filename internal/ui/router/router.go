// Package router keeps a stack of screens. Top-level switches replace the
// whole stack; overlays such as the log viewer are pushed and popped.
package router

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen is one full-window view.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Router routes messages to the screen on top of the stack.
type Router struct {
	stack  []Screen
	width  int
	height int
}

// New creates a router showing root.
func New(root Screen) *Router {
	return &Router{stack: []Screen{root}}
}

// Init initializes the top screen.
func (r *Router) Init() tea.Cmd {
	if top := r.Current(); top != nil {
		return top.Init()
	}
	return nil
}

// Update resizes on WindowSizeMsg, pops overlays on esc and hands everything
// else to the top screen. esc on the bottom screen reaches that screen.
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && r.CanGoBack() {
			return r, r.Back()
		}
	}

	top := r.Current()
	if top == nil {
		return r, nil
	}
	next, cmd := top.Update(msg)
	r.stack[len(r.stack)-1] = next
	return r, cmd
}

// View renders the top screen.
func (r *Router) View() string {
	if top := r.Current(); top != nil {
		return top.View()
	}
	return ""
}

// SetSize stores the window size and passes it to the top screen. Screens
// further down get it when they come back on top.
func (r *Router) SetSize(width, height int) {
	r.width, r.height = width, height
	if top := r.Current(); top != nil {
		top.SetSize(width, height)
	}
}

// Push shows screen on top of the current one.
func (r *Router) Push(screen Screen) tea.Cmd {
	r.stack = append(r.stack, r.prepare(screen))
	return screen.Init()
}

// Back drops the top screen and re-initializes the one below. The bottom
// screen is never popped.
func (r *Router) Back() tea.Cmd {
	if !r.CanGoBack() {
		return nil
	}
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return r.prepare(r.Current()).Init()
}

// Reset replaces the whole stack with screen.
func (r *Router) Reset(screen Screen) tea.Cmd {
	r.stack = []Screen{r.prepare(screen)}
	return screen.Init()
}

func (r *Router) prepare(screen Screen) Screen {
	screen.SetSize(r.width, r.height)
	return screen
}

// Current returns the top screen.
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth is the number of stacked screens.
func (r *Router) Depth() int {
	return len(r.stack)
}

// CanGoBack reports whether there is a screen to go back to.
func (r *Router) CanGoBack() bool {
	return len(r.stack) > 1
}
