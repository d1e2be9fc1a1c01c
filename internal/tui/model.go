// Package tui runs the editor core inside a terminal with bubbletea. It
// implements the platform collaborators over a grid of cells: one view
// unit is one cell.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/editor"
	"github.com/zjrosen/scribe/internal/keys"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/platform"
	"github.com/zjrosen/scribe/internal/pubsub"
)

const (
	// activeFrame paces frames while something is animating.
	activeFrame = time.Second / 60
	// idleFrame paces frames while nothing changes. Background output
	// wakes the loop sooner.
	idleFrame = 250 * time.Millisecond
)

type frameMsg time.Time

// Options wires a Model.
type Options struct {
	Editor *editor.Editor
	// Dialog must be the one handed to the editor.
	Dialog *Dialog
	KeyMap keys.KeyMap
	// Store and Files enable reloading the config and open files when
	// they change on disk. Both are optional.
	Store *config.Store
	Files pubsub.Subscriber[string]
	// Clipboard defaults to the system clipboard.
	Clipboard platform.Clipboard
	// Logs tails the global logger into an overlay toggled with f12.
	Logs bool
}

// Model is the bubbletea model hosting the editor.
type Model struct {
	ctx    context.Context
	editor *editor.Editor
	dialog *Dialog
	keys   keys.KeyMap
	store  *config.Store

	win    *window
	canvas *Canvas
	hover  *hoverRenderer
	logs   logPanel

	wakes     *pubsub.Broker[struct{}]
	wakeSub   *pubsub.ContinuousListener[struct{}]
	files     *pubsub.ContinuousListener[string]
	logListen *log.Listener

	last    time.Time
	changed bool
}

// New creates a Model. ctx bounds the background listeners.
func New(ctx context.Context, opts Options) *Model {
	if opts.Dialog == nil {
		opts.Dialog = &Dialog{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &SystemClipboard{}
	}
	if zone.DefaultManager == nil {
		zone.NewGlobal()
	}
	if opts.KeyMap.Bindings == nil {
		opts.KeyMap = keys.DefaultKeyMap()
	}
	m := &Model{
		ctx:    ctx,
		editor: opts.Editor,
		dialog: opts.Dialog,
		keys:   opts.KeyMap,
		store:  opts.Store,
		win:    &window{clip: opts.Clipboard, theme: opts.Editor.Config().Palette},
		canvas: NewCanvas(0, 0),
		hover:  newHoverRenderer(),
		wakes:  pubsub.NewBroker[struct{}](),
	}
	m.wakeSub = pubsub.NewContinuousListener[struct{}](ctx, m.wakes)
	if opts.Files != nil {
		m.files = pubsub.NewContinuousListener[string](ctx, opts.Files)
	}
	if opts.Logs {
		m.logListen = log.NewListener(ctx)
	}
	return m
}

// Wake makes every signal on ch, and its closing, run a frame. Terminal and
// language server output arrive this way instead of waiting for the idle
// tick.
func (m *Model) Wake(ch <-chan struct{}) {
	go func() {
		for {
			select {
			case <-m.ctx.Done():
				return
			case _, ok := <-ch:
				m.wakes.Publish(pubsub.WokeEvent, struct{}{})
				if !ok {
					return
				}
			}
		}
	}()
}

// Close stops the wake broker.
func (m *Model) Close() {
	m.wakes.Close()
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(activeFrame), m.wakeSub.Listen()}
	if m.files != nil {
		cmds = append(cmds, m.files.Listen())
	}
	if m.logListen != nil {
		cmds = append(cmds, m.logListen.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.win.width, m.win.height = msg.Width, msg.Height
		m.win.shown = true
		return m, m.frame()

	case tea.KeyMsg:
		if msg.String() == "f12" && m.logListen != nil {
			m.logs.visible = !m.logs.visible
			return m, nil
		}
		if m.dialog.Active() {
			m.dialog.HandleKey(msg)
			return m, m.frame()
		}
		in, ok := translateKey(m.keys, msg, m.editor.TerminalFocused())
		if !ok {
			return m, nil
		}
		switch {
		case in.ctrl != 0:
			m.editor.SendTerminalCtrl(in.ctrl)
		case in.hasAct:
			m.win.queue.PushAction(in.act)
		default:
			m.win.queue.PushText(in.text)
		}
		return m, m.frame()

	case tea.MouseMsg:
		if m.dialog.Active() {
			m.dialog.HandleMouse(msg)
			return m, m.frame()
		}
		if ev, ok := translateMouse(msg); ok {
			m.win.queue.PushMouse(ev)
			return m, m.frame()
		}
		return m, nil

	case frameMsg:
		cmd := m.frame()
		next := idleFrame
		if m.changed {
			next = activeFrame
		}
		return m, tea.Batch(cmd, tick(next))

	case pubsub.Event[struct{}]:
		return m, tea.Batch(m.frame(), m.wakeSub.Listen())

	case pubsub.Event[string]:
		if msg.Type == pubsub.LoggedEvent {
			m.logs.add(msg.Payload)
			return m, m.logListen.Listen()
		}
		m.fileEvent(msg)
		return m, tea.Batch(m.frame(), m.files.Listen())
	}
	return m, nil
}

// fileEvent routes a watcher event to a config reload or to the editor.
func (m *Model) fileEvent(ev pubsub.Event[string]) {
	if m.store != nil && m.store.Path() != "" && ev.Payload == m.store.Path() {
		cfg, err := m.store.Reload()
		if err != nil {
			m.dialog.Error("Config error", err.Error())
			return
		}
		m.editor.SetConfig(cfg)
		return
	}
	m.editor.FileChanged(ev.Payload, ev.Type == pubsub.RemovedEvent)
}

// frame runs one editor update and returns the commands it produced.
func (m *Model) frame() tea.Cmd {
	if m.win.width <= 0 || m.win.height <= 0 {
		return nil
	}
	now := time.Now()
	dt := activeFrame.Seconds()
	if !m.last.IsZero() {
		dt = min(now.Sub(m.last).Seconds(), 0.1)
	}
	m.last = now

	before := m.win.title
	m.changed = m.editor.Update(dt, m.win, m.canvas)
	if m.editor.ShouldQuit() {
		return tea.Quit
	}
	if m.win.title != before {
		return tea.SetWindowTitle(m.win.title)
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	w, h := m.win.width, m.win.height
	if w <= 0 || h <= 0 {
		return ""
	}
	th := m.win.theme
	m.canvas.Reset(w, h, th)
	m.editor.Draw(m.canvas)
	out := m.canvas.Render()

	if text := m.editor.HoverText(); text != "" {
		if x, y, ok := m.editor.HoverAnchor(); ok {
			out = placeNear(int(x), int(y), w, h, m.hover.View(text, th, w), out)
		}
	}
	if logs := m.logs.View(th, w, h); logs != "" {
		out = placeAt(2, 1, logs, out)
	}
	if dlg := m.dialog.View(th, w); dlg != "" {
		out = placeCenter(w, h, dlg, out)
	}
	return zone.Scan(out)
}
