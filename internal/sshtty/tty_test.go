package sshtty

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeChannel struct {
	bytes.Buffer
	in     io.Reader
	closed bool
}

func (f *fakeChannel) Read(b []byte) (int, error) { return f.in.Read(b) }

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

var _ tcell.Tty = (*SessionTty)(nil)

func TestDefaultWindowSize(t *testing.T) {
	tty := New(&fakeChannel{in: bytes.NewReader(nil)}, gossh.Window{}, nil)
	ws, err := tty.WindowSize()
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, ws.Width)
	assert.Equal(t, DefaultHeight, ws.Height)
}

func TestReadWriteClose(t *testing.T) {
	ch := &fakeChannel{in: bytes.NewReader([]byte("q"))}
	tty := New(ch, gossh.Window{Width: 100, Height: 40}, nil)

	buf := make([]byte, 1)
	n, err := tty.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "q", string(buf[:n]))

	_, err = tty.Write([]byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, "frame", ch.String())

	require.NoError(t, tty.Close())
	assert.True(t, ch.closed)
}

func TestNotifyResizeFollowsWindowChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	winCh := make(chan gossh.Window, 1)
	tty := New(&fakeChannel{in: bytes.NewReader(nil)}, gossh.Window{Width: 80, Height: 24}, winCh)

	resized := make(chan struct{}, 4)
	tty.NotifyResize(func() { resized <- struct{}{} })
	tty.NotifyResize(func() { resized <- struct{}{} }) // replaces the callback, no second watcher

	winCh <- gossh.Window{Width: 120, Height: 50}
	select {
	case <-resized:
	case <-time.After(2 * time.Second):
		t.Fatal("resize callback not called")
	}
	ws, _ := tty.WindowSize()
	assert.Equal(t, tcell.WindowSize{Width: 120, Height: 50}, ws)

	require.NoError(t, tty.Stop())
	require.NoError(t, tty.Stop(), "stop is idempotent")
}

func TestWatcherExitsWhenChannelCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	winCh := make(chan gossh.Window)
	tty := New(&fakeChannel{in: bytes.NewReader(nil)}, gossh.Window{}, winCh)
	tty.NotifyResize(nil)
	close(winCh)
	// goleak retries until the watcher has returned.
}
