//go:build unix

package commands

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeInput(t *testing.T) (*terminalInput, *os.File, *os.File) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})

	in, err := newTerminalInput(r)
	require.NoError(t, err)
	t.Cleanup(func() { in.Close() })

	return in, r, w
}

// readAsync reads once from r in the background.
func readAsync(r io.Reader) <-chan string {
	out := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, err := r.Read(buf)
		if err != nil {
			out <- "error: " + err.Error()
			return
		}
		out <- string(buf[:n])
	}()
	return out
}

func TestTerminalInput_Read(t *testing.T) {
	in, _, w := newPipeInput(t)

	_, err := w.Write([]byte("ls\n"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := in.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ls\n", string(buf[:n]))
}

func TestTerminalInput_PausedLeavesInputForChildren(t *testing.T) {
	in, r, w := newPipeInput(t)

	// The line editor is blocked waiting for the next keystroke.
	editor := readAsync(in)
	time.Sleep(50 * time.Millisecond)

	in.Pause()
	_, err := w.Write([]byte("for the child"))
	require.NoError(t, err)

	// A foreground child reading the same descriptor.
	select {
	case got := <-readAsync(r):
		assert.Equal(t, "for the child", got)
	case <-time.After(2 * time.Second):
		t.Fatal("input was consumed while paused")
	}

	select {
	case got := <-editor:
		t.Fatalf("read %q while paused", got)
	case <-time.After(50 * time.Millisecond):
	}

	in.Resume()
	_, err = w.Write([]byte("for the shell"))
	require.NoError(t, err)

	select {
	case got := <-editor:
		assert.Equal(t, "for the shell", got)
	case <-time.After(2 * time.Second):
		t.Fatal("no read after Resume")
	}
}

func TestTerminalInput_Close(t *testing.T) {
	t.Run("while reading", func(t *testing.T) {
		in, _, _ := newPipeInput(t)

		editor := readAsync(in)
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, in.Close())

		select {
		case got := <-editor:
			assert.Equal(t, "error: EOF", got)
		case <-time.After(2 * time.Second):
			t.Fatal("Close did not end the read")
		}
	})

	t.Run("while paused", func(t *testing.T) {
		in, _, _ := newPipeInput(t)
		in.Pause()

		editor := readAsync(in)
		require.NoError(t, in.Close())

		select {
		case got := <-editor:
			assert.Equal(t, "error: EOF", got)
		case <-time.After(2 * time.Second):
			t.Fatal("Close did not end the read")
		}
	})

	t.Run("twice", func(t *testing.T) {
		in, _, _ := newPipeInput(t)
		assert.NoError(t, in.Close())
		assert.NoError(t, in.Close())
	})
}
