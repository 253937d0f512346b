// Package sshtty adapts an SSH channel to tcell's Tty interface so every
// connection can drive its own screen.
package sshtty

import (
	"io"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// Fallback size for clients whose pty request carries no dimensions.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// SessionTty implements tcell.Tty on top of an SSH session channel.
type SessionTty struct {
	rw     io.ReadWriteCloser
	winCh  <-chan gossh.Window
	mu     sync.Mutex
	window gossh.Window
	cb     func()

	stop     chan struct{}
	stopOnce sync.Once
	watching bool
}

// New wraps rw. win is the initial window; winCh delivers later resizes and
// may be nil.
func New(rw io.ReadWriteCloser, win gossh.Window, winCh <-chan gossh.Window) *SessionTty {
	if win.Width <= 0 || win.Height <= 0 {
		win.Width, win.Height = DefaultWidth, DefaultHeight
	}
	return &SessionTty{
		rw:     rw,
		winCh:  winCh,
		window: win,
		stop:   make(chan struct{}),
	}
}

// FromSession wraps a gliderlabs session using its pty request.
func FromSession(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *SessionTty {
	return New(s, pty.Window, winCh)
}

func (t *SessionTty) Read(b []byte) (int, error)  { return t.rw.Read(b) }
func (t *SessionTty) Write(b []byte) (int, error) { return t.rw.Write(b) }

// Close stops resize tracking and closes the channel.
func (t *SessionTty) Close() error {
	t.halt()
	return t.rw.Close()
}

// Start is a no-op; the channel is already open.
func (t *SessionTty) Start() error { return nil }

// Stop ends resize tracking. tcell calls it from Fini.
func (t *SessionTty) Stop() error {
	t.halt()
	return nil
}

// Drain is a no-op; channel writes are not buffered.
func (t *SessionTty) Drain() error { return nil }

// WindowSize returns the current terminal dimensions.
func (t *SessionTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers cb for window changes. The first call starts a
// goroutine that follows the window channel until Stop or Close.
func (t *SessionTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.cb = cb
	start := !t.watching && t.winCh != nil
	t.watching = true
	t.mu.Unlock()

	if start {
		go t.watch()
	}
}

func (t *SessionTty) watch() {
	for {
		select {
		case <-t.stop:
			return
		case win, ok := <-t.winCh:
			if !ok {
				return
			}
			t.mu.Lock()
			if win.Width > 0 && win.Height > 0 {
				t.window = win
			}
			cb := t.cb
			t.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	}
}

func (t *SessionTty) halt() {
	t.stopOnce.Do(func() { close(t.stop) })
}
