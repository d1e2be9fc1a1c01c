package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/zjrosen/scribe/internal/log"
)

// PTYProcess is a child program attached to a pseudo terminal. A reader
// goroutine appends its output to a mutex-guarded buffer and signals Wake;
// the frame loop drains the buffer with Output.
type PTYProcess struct {
	cmd  *exec.Cmd
	pty  *os.File
	mu   sync.Mutex
	out  []byte
	wake chan struct{}
	done chan struct{}
	err  error
}

// StartPTY runs name with args in dir on a new cols×rows pseudo terminal.
func StartPTY(ctx context.Context, dir string, cols, rows int, name string, args ...string) (*PTYProcess, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}
	p := &PTYProcess{
		cmd:  cmd,
		pty:  f,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go p.read()
	log.Info(log.CatTerm, "started process", "cmd", name, "pid", cmd.Process.Pid)
	return p, nil
}

func (p *PTYProcess) read() {
	defer close(p.done)
	buf := make([]byte, 32*1024)
	for {
		n, err := p.pty.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.out = append(p.out, buf[:n]...)
			p.mu.Unlock()
			p.signal()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, syscall.EIO) {
				p.mu.Lock()
				p.err = err
				p.mu.Unlock()
				log.ErrorErr(log.CatTerm, "reading from pty failed", err)
			}
			p.signal()
			return
		}
	}
}

func (p *PTYProcess) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Output drains buffered output.
func (p *PTYProcess) Output() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.out) == 0 {
		return nil
	}
	out := p.out
	p.out = nil
	return out
}

// Write sends input to the process.
func (p *PTYProcess) Write(b []byte) (int, error) {
	return p.pty.Write(b)
}

// Resize informs the process of a new grid size.
func (p *PTYProcess) Resize(cols, rows int) error {
	return pty.Setsize(p.pty, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// Wake is signalled whenever output arrives or the process exits.
func (p *PTYProcess) Wake() <-chan struct{} { return p.wake }

// Done is closed once the process closed its side of the terminal.
func (p *PTYProcess) Done() <-chan struct{} { return p.done }

// Err returns the read error that ended the process, if any.
func (p *PTYProcess) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close terminates the process and releases the terminal.
func (p *PTYProcess) Close() error {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
	}
	err := p.pty.Close()
	go func() { _ = p.cmd.Wait() }()
	return err
}
