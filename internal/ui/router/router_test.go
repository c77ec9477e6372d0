package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type fakeScreen struct {
	name          string
	inits         int
	width, height int
	lastMsg       tea.Msg
}

func (s *fakeScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *fakeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.lastMsg = msg
	return s, nil
}

func (s *fakeScreen) View() string { return s.name }

func (s *fakeScreen) SetSize(width, height int) {
	s.width, s.height = width, height
}

func TestRouterPushAndBack(t *testing.T) {
	root := &fakeScreen{name: "trading"}
	r := New(root)
	r.SetSize(120, 40)

	logs := &fakeScreen{name: "logs"}
	r.Push(logs)
	assert.Equal(t, "logs", r.View())
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, 120, logs.width)
	assert.True(t, r.CanGoBack())

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "trading", r.View())
	assert.False(t, r.CanGoBack())
}

func TestRouterEscOnRootReachesScreen(t *testing.T) {
	root := &fakeScreen{name: "trading"}
	r := New(root)

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "trading", r.View())
	assert.Equal(t, tea.KeyMsg{Type: tea.KeyEsc}, root.lastMsg)
}

func TestRouterReset(t *testing.T) {
	r := New(&fakeScreen{name: "login"})
	r.Push(&fakeScreen{name: "logs"})

	next := &fakeScreen{name: "trading"}
	r.Reset(next)

	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "trading", r.View())
	assert.Equal(t, 1, next.inits)
}

func TestRouterWindowSize(t *testing.T) {
	root := &fakeScreen{name: "login"}
	r := New(root)

	r.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	assert.Equal(t, 90, root.width)
	assert.Equal(t, 30, root.height)
}
