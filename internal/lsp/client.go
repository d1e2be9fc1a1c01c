// Package lsp connects documents to a language server: it mirrors edits as
// incremental didChange notifications and feeds diagnostics, hover text,
// renames and formatting back into documents.
package lsp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/log"
)

// Transport carries messages to and from one language server.
type Transport interface {
	Send(m Message) error
	// Messages drains the messages received since the last call.
	Messages() []Message
}

type tracked struct {
	doc        *document.Document
	uri        string
	languageID string
	version    int32
	opened     bool
	changes    []ContentChange
}

type pending struct {
	method  string
	doc     *document.Document
	version uint64
	done    func()
}

// Client is the consumer side of one language server. It is driven from the
// frame loop: Update handles what arrived and flushes pending changes.
type Client struct {
	t       Transport
	enc     Encoding
	nextID  int64
	pending map[int64]pending
	docs    map[*document.Document]*tracked
	uris    map[string]*tracked
	order   []*tracked
	ready   bool
	queued  []Message
	prefer  Encoding

	// Open resolves paths in a workspace edit that are not open yet.
	Open func(path string) (*document.Document, error)
	// Notify receives window/showMessage text and request failures.
	Notify func(msg string)
}

// NewClient returns a client speaking over t. Nothing is sent until
// Initialize.
func NewClient(t Transport) *Client {
	return &Client{
		t:       t,
		enc:     UTF16,
		pending: make(map[int64]pending),
		docs:    make(map[*document.Document]*tracked),
		uris:    make(map[string]*tracked),
	}
}

// Encoding returns the negotiated position encoding.
func (c *Client) Encoding() Encoding { return c.enc }

// Ready reports whether the initialize handshake finished.
func (c *Client) Ready() bool { return c.ready }

// Prefer puts enc first among the position encodings offered at
// initialize. Servers that ignore the list still get utf-16.
func (c *Client) Prefer(enc Encoding) { c.prefer = enc }

func (c *Client) offeredEncodings() []Encoding {
	encs := []Encoding{UTF8, UTF16}
	switch c.prefer {
	case UTF16:
		encs = []Encoding{UTF16, UTF8}
	case UTF32:
		encs = []Encoding{UTF32, UTF8, UTF16}
	}
	return encs
}

func newMessage(method string, params any) (Message, error) {
	m := Message{JSONRPC: "2.0", Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return Message{}, fmt.Errorf("encoding %s params: %w", method, err)
		}
		m.Params = raw
	}
	return m, nil
}

func (c *Client) send(m Message) error {
	if !c.ready && m.Method != "initialize" {
		c.queued = append(c.queued, m)
		return nil
	}
	if err := c.t.Send(m); err != nil {
		return fmt.Errorf("sending %s: %w", m.Method, err)
	}
	return nil
}

func (c *Client) notify(method string, params any) error {
	m, err := newMessage(method, params)
	if err != nil {
		return err
	}
	return c.send(m)
}

func (c *Client) request(method string, params any, p pending) error {
	m, err := newMessage(method, params)
	if err != nil {
		return err
	}
	c.nextID++
	id := c.nextID
	m.ID = json.RawMessage(fmt.Sprint(id))
	p.method = method
	c.pending[id] = p
	return c.send(m)
}

// Initialize starts the handshake for a workspace rooted at root.
func (c *Client) Initialize(root string) error {
	params := initializeParams{ProcessID: os.Getpid(), RootURI: URIFromPath(root)}
	params.Capabilities.General.PositionEncodings = c.offeredEncodings()
	params.Capabilities.TextDocument.PublishDiagnostics.VersionSupport = true
	params.Capabilities.TextDocument.Hover.ContentFormat = []string{"markdown", "plaintext"}
	return c.request("initialize", params, pending{})
}

// DidOpen starts tracking d. Edits made afterwards are sent as incremental
// changes.
func (c *Client) DidOpen(d *document.Document, path, languageID string) error {
	if _, ok := c.docs[d]; ok {
		return nil
	}
	t := &tracked{doc: d, uri: URIFromPath(path), languageID: languageID}
	c.docs[d] = t
	c.uris[t.uri] = t
	c.order = append(c.order, t)
	d.AddListener(c)
	if !c.ready {
		return nil
	}
	return c.open(t)
}

func (c *Client) open(t *tracked) error {
	t.opened = true
	t.version = 1
	t.changes = nil
	return c.notify("textDocument/didOpen", DidOpenParams{TextDocument: TextDocumentItem{
		URI:        t.uri,
		LanguageID: t.languageID,
		Version:    t.version,
		Text:       t.doc.String(),
	}})
}

// DidClose stops tracking d.
func (c *Client) DidClose(d *document.Document) error {
	t, ok := c.docs[d]
	if !ok {
		return nil
	}
	d.RemoveListener(c)
	delete(c.docs, d)
	delete(c.uris, t.uri)
	for i, o := range c.order {
		if o == t {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if !t.opened {
		return nil
	}
	return c.notify("textDocument/didClose", DidCloseParams{TextDocument: TextDocumentIdentifier{URI: t.uri}})
}

// DidSave tells the server d was written.
func (c *Client) DidSave(d *document.Document) error {
	t, ok := c.docs[d]
	if !ok || !t.opened {
		return nil
	}
	if err := c.Flush(); err != nil {
		return err
	}
	return c.notify("textDocument/didSave", DidSaveParams{TextDocument: TextDocumentIdentifier{URI: t.uri}})
}

// Tracks reports whether d is open on this server.
func (c *Client) Tracks(d *document.Document) bool {
	_, ok := c.docs[d]
	return ok
}

// DocumentChanged implements document.ChangeListener. The range is derived
// from the post-edit text, which still holds everything before the change.
func (c *Client) DocumentChanged(d *document.Document, ch document.Change) {
	t, ok := c.docs[d]
	if !ok || !t.opened {
		return
	}
	start := Position{Line: ch.Start.Row, Character: c.enc.Encode(d.Line(ch.Start.Row), ch.Start.Col)}
	end := start
	if ch.Removed != "" {
		if nl := strings.LastIndexByte(ch.Removed, '\n'); nl >= 0 {
			end = Position{Line: ch.End.Row, Character: c.enc.EncodeString(ch.Removed[nl+1:])}
		} else {
			end.Character += c.enc.EncodeString(ch.Removed)
		}
	}
	t.changes = append(t.changes, ContentChange{Range: &Range{Start: start, End: end}, Text: ch.Text})
}

// Flush sends one didChange per document with pending edits.
func (c *Client) Flush() error {
	var errs []error
	for _, t := range c.order {
		if len(t.changes) == 0 {
			continue
		}
		t.version++
		err := c.notify("textDocument/didChange", DidChangeParams{
			TextDocument:   VersionedTextDocumentIdentifier{URI: t.uri, Version: t.version},
			ContentChanges: t.changes,
		})
		t.changes = nil
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Client) position(d *document.Document, p document.Position) (TextDocumentIdentifier, Position, error) {
	t, ok := c.docs[d]
	if !ok {
		return TextDocumentIdentifier{}, Position{}, fmt.Errorf("document %q is not open on the language server", d.Path())
	}
	if err := c.Flush(); err != nil {
		return TextDocumentIdentifier{}, Position{}, err
	}
	return TextDocumentIdentifier{URI: t.uri}, c.enc.ToLSP(d, p), nil
}

// Hover asks for hover text at p; the answer lands in d.SetHover.
func (c *Client) Hover(d *document.Document, p document.Position) error {
	id, pos, err := c.position(d, p)
	if err != nil {
		return err
	}
	return c.request("textDocument/hover", TextDocumentPositionParams{TextDocument: id, Position: pos},
		pending{doc: d, version: d.Version()})
}

// Rename asks the server to rename the symbol at p and applies the
// resulting workspace edit.
func (c *Client) Rename(d *document.Document, p document.Position, newName string) error {
	id, pos, err := c.position(d, p)
	if err != nil {
		return err
	}
	return c.request("textDocument/rename", RenameParams{TextDocument: id, Position: pos, NewName: newName},
		pending{doc: d, version: d.Version()})
}

// Format asks for whole-document formatting. The edits are applied only if
// d did not change in the meantime; done runs afterwards either way.
func (c *Client) Format(d *document.Document, tabSize int, insertSpaces bool, done func()) error {
	id, _, err := c.position(d, document.Position{})
	if err != nil {
		return err
	}
	return c.request("textDocument/formatting", DocumentFormattingParams{
		TextDocument: id,
		Options:      FormattingOptions{TabSize: tabSize, InsertSpaces: insertSpaces},
	}, pending{doc: d, version: d.Version(), done: done})
}

// Update handles every message received since the last frame, then flushes
// pending changes. It returns whether anything arrived.
func (c *Client) Update() bool {
	msgs := c.t.Messages()
	for _, m := range msgs {
		if err := c.Handle(m); err != nil {
			log.ErrorErr(log.CatLSP, "handling message failed", err, "method", m.Method)
		}
	}
	if err := c.Flush(); err != nil {
		log.ErrorErr(log.CatLSP, "flushing changes failed", err)
	}
	return len(msgs) > 0
}

// Handle routes one message from the server.
func (c *Client) Handle(m Message) error {
	switch {
	case m.IsResponse():
		return c.handleResponse(m)
	case m.IsRequest():
		// Configuration and capability requests get an empty answer.
		return c.t.Send(Message{JSONRPC: "2.0", ID: m.ID, Result: json.RawMessage("null")})
	default:
		return c.handleNotification(m)
	}
}

func (c *Client) handleResponse(m Message) error {
	var id int64
	if err := json.Unmarshal(m.ID, &id); err != nil {
		return fmt.Errorf("response id %s: %w", m.ID, err)
	}
	p, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	if p.done != nil {
		defer p.done()
	}
	if m.Error != nil {
		c.report(p.method + ": " + m.Error.Message)
		return m.Error
	}

	switch p.method {
	case "initialize":
		return c.initialized(m.Result)
	case "textDocument/hover":
		return c.hoverResponse(p, m.Result)
	case "textDocument/rename":
		var we WorkspaceEdit
		if err := unmarshalResult(m.Result, &we); err != nil {
			return err
		}
		return c.ApplyWorkspaceEdit(we)
	case "textDocument/formatting":
		var edits []TextEdit
		if err := unmarshalResult(m.Result, &edits); err != nil {
			return err
		}
		if p.doc.Version() != p.version {
			log.Debug(log.CatLSP, "dropping stale formatting", "path", p.doc.Path())
			return nil
		}
		p.doc.ApplyEdits(c.decodeEdits(p.doc, edits))
	}
	return nil
}

func unmarshalResult(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

func (c *Client) initialized(raw json.RawMessage) error {
	var res initializeResult
	if err := unmarshalResult(raw, &res); err != nil {
		return err
	}
	switch res.Capabilities.PositionEncoding {
	case UTF8, UTF32:
		c.enc = res.Capabilities.PositionEncoding
	default:
		c.enc = UTF16
	}
	c.ready = true
	log.Info(log.CatLSP, "language server ready", "encoding", string(c.enc))

	queued := c.queued
	c.queued = nil
	errs := []error{c.notify("initialized", struct{}{})}
	for _, t := range c.order {
		if !t.opened {
			errs = append(errs, c.open(t))
		}
	}
	for _, m := range queued {
		errs = append(errs, c.send(m))
	}
	return errors.Join(errs...)
}

func (c *Client) hoverResponse(p pending, raw json.RawMessage) error {
	var hr hoverResult
	if err := unmarshalResult(raw, &hr); err != nil {
		return err
	}
	if len(hr.Contents) == 0 {
		p.doc.SetHover("")
		return nil
	}
	p.doc.SetHover(strings.TrimSpace(hr.text()))
	return nil
}

func (c *Client) handleNotification(m Message) error {
	switch m.Method {
	case "textDocument/publishDiagnostics":
		var params PublishDiagnosticsParams
		if err := json.Unmarshal(m.Params, &params); err != nil {
			return fmt.Errorf("decoding diagnostics: %w", err)
		}
		c.setDiagnostics(params)
	case "window/showMessage":
		var params ShowMessageParams
		if err := json.Unmarshal(m.Params, &params); err != nil {
			return fmt.Errorf("decoding message: %w", err)
		}
		c.report(params.Message)
	case "window/logMessage":
		var params ShowMessageParams
		if err := json.Unmarshal(m.Params, &params); err == nil {
			log.Debug(log.CatLSP, params.Message)
		}
	}
	return nil
}

func (c *Client) report(msg string) {
	log.Warn(log.CatLSP, msg)
	if c.Notify != nil {
		c.Notify(msg)
	}
}

func (c *Client) setDiagnostics(params PublishDiagnosticsParams) {
	t, ok := c.uris[params.URI]
	if !ok {
		return
	}
	if params.Version != nil && *params.Version != t.version {
		log.Debug(log.CatLSP, "dropping stale diagnostics", "uri", params.URI)
		return
	}
	ds := make([]document.Diagnostic, 0, len(params.Diagnostics))
	for _, d := range params.Diagnostics {
		sev := document.Severity(d.Severity)
		if sev < document.SeverityError || sev > document.SeverityHint {
			sev = document.SeverityError
		}
		ds = append(ds, document.Diagnostic{
			Start: c.enc.FromLSP(t.doc, d.Range.Start),
			End:   c.enc.FromLSP(t.doc, d.Range.End),
			Encoded: document.EncodedRange{
				StartLine: d.Range.Start.Line,
				StartChar: d.Range.Start.Character,
				EndLine:   d.Range.End.Line,
				EndChar:   d.Range.End.Character,
			},
			Severity: sev,
			Message:  d.Message,
			Source:   d.Source,
		})
	}
	t.doc.SetDiagnostics(ds)
}

func (c *Client) decodeEdits(d *document.Document, edits []TextEdit) []document.Edit {
	out := make([]document.Edit, 0, len(edits))
	for _, e := range edits {
		out = append(out, document.Edit{
			Start: c.enc.FromLSP(d, e.Range.Start),
			End:   c.enc.FromLSP(d, e.Range.End),
			Text:  e.NewText,
		})
	}
	return out
}

// ApplyWorkspaceEdit applies we to open documents, opening the others
// through Open when it is set.
func (c *Client) ApplyWorkspaceEdit(we WorkspaceEdit) error {
	byURI := make(map[string][]TextEdit)
	for uri, edits := range we.Changes {
		byURI[uri] = append(byURI[uri], edits...)
	}
	for _, dc := range we.DocumentChanges {
		byURI[dc.TextDocument.URI] = append(byURI[dc.TextDocument.URI], dc.Edits...)
	}
	uris := make([]string, 0, len(byURI))
	for uri := range byURI {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	var errs []error
	for _, uri := range uris {
		d, err := c.documentFor(uri)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d.ApplyEdits(c.decodeEdits(d, byURI[uri]))
	}
	return errors.Join(errs...)
}

func (c *Client) documentFor(uri string) (*document.Document, error) {
	if t, ok := c.uris[uri]; ok {
		return t.doc, nil
	}
	if c.Open == nil {
		return nil, fmt.Errorf("workspace edit touches %s, which is not open", uri)
	}
	path, err := PathFromURI(uri)
	if err != nil {
		return nil, err
	}
	return c.Open(path)
}
