package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/zjrosen/scribe/internal/log"
)

// StreamTransport frames messages with Content-Length headers over a pair
// of streams. A reader goroutine decodes incoming messages into a
// mutex-guarded inbox and signals Wake; the frame loop drains the inbox.
type StreamTransport struct {
	w   io.Writer
	wmu sync.Mutex

	mu    sync.Mutex
	inbox []Message
	err   error

	wake chan struct{}
	done chan struct{}

	closers []io.Closer
	cmd     *exec.Cmd
}

// NewStreamTransport reads from r and writes to w.
func NewStreamTransport(r io.Reader, w io.Writer) *StreamTransport {
	t := &StreamTransport{
		w:    w,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go t.read(bufio.NewReader(r))
	return t
}

// StartServer runs command in dir and talks to it over stdio.
func StartServer(ctx context.Context, dir string, command []string) (*StreamTransport, error) {
	if len(command) == 0 {
		return nil, errors.New("empty language server command")
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stderr = io.Discard
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("language server stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("language server stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", command[0], err)
	}
	t := NewStreamTransport(stdout, stdin)
	t.cmd = cmd
	t.closers = []io.Closer{stdin}
	log.Info(log.CatLSP, "started language server", "cmd", command[0], "pid", cmd.Process.Pid)
	return t, nil
}

func (t *StreamTransport) read(r *bufio.Reader) {
	defer close(t.done)
	tp := textproto.NewReader(r)
	for {
		m, err := readMessage(tp, r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				t.mu.Lock()
				t.err = err
				t.mu.Unlock()
				log.ErrorErr(log.CatLSP, "reading from language server failed", err)
			}
			t.signal()
			return
		}
		t.mu.Lock()
		t.inbox = append(t.inbox, m)
		t.mu.Unlock()
		t.signal()
	}
}

func readMessage(tp *textproto.Reader, r *bufio.Reader) (Message, error) {
	header, err := tp.ReadMIMEHeader()
	if err != nil {
		return Message{}, err
	}
	n, err := strconv.Atoi(header.Get("Content-Length"))
	if err != nil || n < 0 {
		return Message{}, fmt.Errorf("bad Content-Length %q", header.Get("Content-Length"))
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, err
	}
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("decoding message: %w", err)
	}
	return m, nil
}

func (t *StreamTransport) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Send implements Transport.
func (t *StreamTransport) Send(m Message) error {
	if m.JSONRPC == "" {
		m.JSONRPC = "2.0"
	}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if _, err := fmt.Fprintf(t.w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	_, err = t.w.Write(body)
	return err
}

// Messages implements Transport.
func (t *StreamTransport) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.inbox
	t.inbox = nil
	return out
}

// Wake is signalled when a message arrives or the stream ends.
func (t *StreamTransport) Wake() <-chan struct{} { return t.wake }

// Done is closed when the read side ends.
func (t *StreamTransport) Done() <-chan struct{} { return t.done }

// Err returns the error that stopped the reader, if any.
func (t *StreamTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Close ends the session and stops the server process.
func (t *StreamTransport) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	if t.cmd != nil && t.cmd.Process != nil {
		errs = append(errs, t.cmd.Process.Kill())
		go func() { _ = t.cmd.Wait() }()
	}
	return errors.Join(errs...)
}
