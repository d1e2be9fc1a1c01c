package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/terminal"
)

type fakeProcess struct {
	pending    [][]byte
	written    []byte
	cols, rows int
	done       chan struct{}
	closed     bool
}

func newFakeProcess(output ...string) *fakeProcess {
	p := &fakeProcess{done: make(chan struct{})}
	for _, o := range output {
		p.pending = append(p.pending, []byte(o))
	}
	return p
}

func (p *fakeProcess) Output() []byte {
	if len(p.pending) == 0 {
		return nil
	}
	out := p.pending[0]
	p.pending = p.pending[1:]
	return out
}

func (p *fakeProcess) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakeProcess) Resize(cols, rows int) error {
	p.cols, p.rows = cols, rows
	return nil
}

func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) Close() error {
	p.closed = true
	return nil
}

func spawnOnce(p *fakeProcess, calls *int) Spawner {
	return func(context.Context, string, int, int) (terminal.Process, error) {
		*calls++
		return p, nil
	}
}

func TestTerminalPanel(t *testing.T) {
	proc := newFakeProcess("hello")
	spawns := 0
	e, win := newTestEditor(t, config.Defaults(), Options{Spawn: spawnOnce(proc, &spawns)})
	e.NewDocument()

	win.queue.PushAction(action.Of(action.ToggleTerminal))
	frame(e, win)
	require.NotNil(t, e.Terminal())
	assert.True(t, e.TerminalFocused())
	assert.Equal(t, 1, spawns)
	assert.Contains(t, e.Terminal().Document().Line(0), "hello")

	win.queue.PushText("ls")
	frame(e, win)
	assert.Positive(t, e.geo.terminal.H)
	win.queue.PushAction(action.Of(action.Enter))
	frame(e, win)
	assert.Equal(t, "ls\r", string(proc.written))
	assert.Equal(t, "", focusedDoc(t, e).String(), "typing went to the shell")

	left, _ := e.StatusLine()
	assert.Equal(t, "terminal", left)

	win.queue.PushAction(action.Of(action.ToggleTerminal))
	frame(e, win)
	assert.False(t, e.TerminalFocused())
	frame(e, win)
	assert.Zero(t, e.geo.terminal.H, "hidden panels take no space")

	win.queue.PushAction(action.Of(action.ToggleTerminal))
	frame(e, win)
	assert.True(t, e.TerminalFocused())
	assert.Equal(t, 1, spawns, "the shell is started once")

	close(proc.done)
	frame(e, win)
	assert.Nil(t, e.Terminal())
	assert.False(t, e.TerminalFocused())
	assert.Equal(t, "terminal exited", e.Status())
	assert.True(t, proc.closed)
}

func TestTerminalTranslatesEditorKeys(t *testing.T) {
	tests := []struct {
		name string
		act  action.Action
		want string
	}{
		{name: "arrow", act: action.Of(action.MoveUp), want: "\x1b[A"},
		{name: "backspace", act: action.Of(action.DeleteBackward), want: "\x7f"},
		{name: "word left", act: action.Of(action.MoveWordLeft), want: "\x1bb"},
		{name: "delete word", act: action.Of(action.DeleteWordBackward), want: "\x17"},
		{name: "tab", act: action.Of(action.Indent), want: "\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := newFakeProcess()
			spawns := 0
			e, win := newTestEditor(t, config.Defaults(), Options{Spawn: spawnOnce(proc, &spawns)})
			win.queue.PushAction(action.Of(action.ToggleTerminal))
			frame(e, win)

			win.queue.PushAction(tt.act)
			frame(e, win)
			assert.Equal(t, tt.want, string(proc.written))
		})
	}
}

func TestTerminalCtrlAndPaste(t *testing.T) {
	proc := newFakeProcess()
	spawns := 0
	e, win := newTestEditor(t, config.Defaults(), Options{Spawn: spawnOnce(proc, &spawns)})
	win.queue.PushAction(action.Of(action.ToggleTerminal))
	frame(e, win)

	e.SendTerminalCtrl('c')
	assert.Equal(t, "\x03", string(proc.written))

	proc.written = nil
	require.NoError(t, win.clip.Set("echo a\necho b"))
	win.queue.PushAction(action.Of(action.Paste))
	frame(e, win)
	assert.Equal(t, "echo a\recho b", string(proc.written))
}

func TestTerminalCloseTabClosesShell(t *testing.T) {
	proc := newFakeProcess()
	spawns := 0
	e, win := newTestEditor(t, config.Defaults(), Options{Spawn: spawnOnce(proc, &spawns)})
	e.NewDocument()
	win.queue.PushAction(action.Of(action.ToggleTerminal))
	frame(e, win)

	win.queue.PushAction(action.Of(action.CloseTab))
	frame(e, win)
	assert.Nil(t, e.Terminal())
	assert.True(t, proc.closed)
	assert.Equal(t, 1, e.BufferCount(), "the document tab stays")
}

func TestTerminalSpawnFailure(t *testing.T) {
	dlg := &fakeDialog{}
	spawn := func(context.Context, string, int, int) (terminal.Process, error) {
		return nil, errors.New("no pty")
	}
	e, win := newTestEditor(t, config.Defaults(), Options{Spawn: spawn, Dialog: dlg})
	win.queue.PushAction(action.Of(action.ToggleTerminal))
	frame(e, win)

	assert.Nil(t, e.Terminal())
	assert.Equal(t, []string{"no pty"}, dlg.errors)
}

func TestClickFocusesTerminal(t *testing.T) {
	proc := newFakeProcess()
	spawns := 0
	e, win := newTestEditor(t, config.Defaults(), Options{Spawn: spawnOnce(proc, &spawns)})
	e.NewDocument()
	win.queue.PushAction(action.Of(action.ToggleTerminal))
	frame(e, win)

	win.queue.PushMouse(action.MouseEvent{Kind: action.MousePress, X: 5, Y: 2})
	frame(e, win)
	assert.False(t, e.TerminalFocused())

	win.queue.PushMouse(action.MouseEvent{Kind: action.MousePress, X: 5, Y: e.geo.terminal.Y + 1})
	frame(e, win)
	assert.True(t, e.TerminalFocused())
}
