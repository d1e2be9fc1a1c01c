package editor

import (
	"io"
	"strings"

	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/lsp"
	"github.com/zjrosen/scribe/internal/syntax"
)

// server is one running language server, shared by every buffer of its
// language.
type server struct {
	name      string
	client    *lsp.Client
	transport lsp.Transport
}

func languageID(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

func (e *Editor) serverFor(buf *Buffer) *server {
	if buf.Syntax == nil {
		return nil
	}
	return e.servers[buf.Syntax.Name]
}

// startServer launches the server of syn. It returns nil on failure.
func (e *Editor) startServer(syn *syntax.Syntax) *server {
	t, err := e.opts.StartServer(e.ctx, e.opts.Root, syn.LanguageServer)
	if err != nil {
		log.ErrorErr(log.CatLSP, "starting language server failed", err, "language", syn.Name)
		e.setStatus("%s language server: %v", syn.Name, err)
		return nil
	}
	c := lsp.NewClient(t)
	c.Prefer(lsp.Encoding(e.cfg.LSPPositionEncoding))
	c.Open = e.openForEdit
	c.Notify = func(msg string) { e.status = msg }
	if err := c.Initialize(e.opts.Root); err != nil {
		log.ErrorErr(log.CatLSP, "initialize failed", err, "language", syn.Name)
	}
	log.Info(log.CatLSP, "language server started", "language", syn.Name, "command", strings.Join(syn.LanguageServer, " "))
	return &server{name: syn.Name, client: c, transport: t}
}

// attachServer opens buf with its language's server, starting the server
// on first use. A server that failed to start is not retried.
func (e *Editor) attachServer(buf *Buffer) {
	syn := buf.Syntax
	if syn == nil || len(syn.LanguageServer) == 0 || buf.Doc.Path() == "" || e.opts.StartServer == nil {
		return
	}
	s, ok := e.servers[syn.Name]
	if !ok {
		s = e.startServer(syn)
		e.servers[syn.Name] = s
	}
	if s == nil {
		return
	}
	if err := s.client.DidOpen(buf.Doc, buf.Doc.Path(), languageID(syn.Name)); err != nil {
		log.ErrorErr(log.CatLSP, "didOpen failed", err, "path", buf.Doc.Path())
	}
}

func (e *Editor) detachServer(buf *Buffer) {
	for _, s := range e.servers {
		if s == nil || !s.client.Tracks(buf.Doc) {
			continue
		}
		if err := s.client.DidClose(buf.Doc); err != nil {
			log.ErrorErr(log.CatLSP, "didClose failed", err)
		}
	}
}

func (e *Editor) didSave(buf *Buffer) {
	if s := e.serverFor(buf); s != nil {
		if err := s.client.DidSave(buf.Doc); err != nil {
			log.ErrorErr(log.CatLSP, "didSave failed", err)
		}
	}
}

// tracked returns the server that has buf open.
func (e *Editor) tracked(buf *Buffer) *server {
	if s := e.serverFor(buf); s != nil && s.client.Tracks(buf.Doc) {
		return s
	}
	return nil
}

// format asks the server to format buf and reports whether a request went
// out. done runs once the edits were applied or dropped.
func (e *Editor) format(buf *Buffer, done func()) bool {
	s := e.tracked(buf)
	if s == nil {
		if done == nil {
			e.setStatus("no language server for %s", buf.Name())
		}
		return false
	}
	if done == nil {
		done = func() {}
	}
	if err := s.client.Format(buf.Doc, e.cfg.TabWidth, !e.cfg.IndentWithTabs, done); err != nil {
		log.ErrorErr(log.CatLSP, "format request failed", err)
		return false
	}
	return true
}

func (e *Editor) hover(buf *Buffer) {
	s := e.tracked(buf)
	if s == nil {
		e.setStatus("no language server for %s", buf.Name())
		return
	}
	if err := s.client.Hover(buf.Doc, buf.Doc.MainCursor().Position); err != nil {
		log.ErrorErr(log.CatLSP, "hover request failed", err)
	}
}

func (e *Editor) rename(buf *Buffer, name string) {
	s := e.tracked(buf)
	if s == nil {
		e.setStatus("no language server for %s", buf.Name())
		return
	}
	if err := s.client.Rename(buf.Doc, buf.Doc.MainCursor().Position, name); err != nil {
		log.ErrorErr(log.CatLSP, "rename request failed", err)
	}
}

// updateServers handles what every server sent since the last frame.
func (e *Editor) updateServers() bool {
	changed := false
	for _, s := range e.servers {
		if s != nil && s.client.Update() {
			changed = true
		}
	}
	return changed
}

func (e *Editor) closeServers() {
	for name, s := range e.servers {
		if s == nil {
			continue
		}
		if c, ok := s.transport.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Debug(log.CatLSP, "closing language server", "language", name, "error", err)
			}
		}
	}
	clear(e.servers)
}
