package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// DefaultTTY is the controlling terminal of the process. It stays usable when
// stdin and stdout are redirected, e.g. when the editor captures our output.
const DefaultTTY = "/dev/tty"

// Escape sequences written on entry and exit, in this order.
const (
	enterAltScreen = "\x1b[?1049h"
	leaveAltScreen = "\x1b[?1049l"
	enableMouse    = "\x1b[?1000h"
	disableMouse   = "\x1b[?1000l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
)

const (
	// escWait is how long a lone ESC waits for the rest of a sequence.
	escWait = 50 * time.Millisecond
	// maxSeqBytes bounds how many follow-on bytes are read after ESC.
	maxSeqBytes = 16
)

var (
	// ErrOpen is returned when the controlling terminal cannot be opened.
	ErrOpen = errors.New("cannot open terminal")
	// ErrRawMode is returned when raw mode cannot be engaged.
	ErrRawMode = errors.New("cannot enter raw mode")
	// ErrIO is returned when reading or writing the terminal fails.
	ErrIO = errors.New("terminal i/o failed")
)

// Terminal owns the controlling terminal for the lifetime of one dialog.
// Frames go out through the write handle; keys come in through a second,
// independent read handle.
type Terminal struct {
	out      *os.File
	in       *os.File
	inFd     int
	oldState *term.State
	keys     *keyReader

	closeOnce sync.Once
	closeErr  error
}

// Open acquires the terminal at path (DefaultTTY when empty), switches it to
// raw mode, enters the alternate screen and enables mouse reporting. Any
// partial setup is undone before an error is returned.
func Open(path string) (*Terminal, error) {
	if path == "" {
		path = DefaultTTY
	}

	out, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}
	in, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	t := &Terminal{out: out, in: in, inFd: int(in.Fd())}

	if _, err := io.WriteString(out, enterAltScreen); err != nil {
		t.closeFiles()
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	oldState, err := term.MakeRaw(t.inFd)
	if err != nil {
		io.WriteString(out, leaveAltScreen)
		t.closeFiles()
		return nil, fmt.Errorf("%w: %w", ErrRawMode, err)
	}
	t.oldState = oldState

	if _, err := io.WriteString(out, enableMouse+hideCursor); err != nil {
		t.Close()
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	t.keys = newKeyReader(fdSource(t.inFd))
	return t, nil
}

// Close leaves every mode Open entered, in reverse order, and releases both
// descriptors. Calling it again is a no-op.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		var errs []error
		if _, err := io.WriteString(t.out, disableMouse+leaveAltScreen); err != nil {
			errs = append(errs, err)
		}
		if t.oldState != nil {
			if err := term.Restore(t.inFd, t.oldState); err != nil {
				errs = append(errs, err)
			}
		}
		if _, err := io.WriteString(t.out, showCursor); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, t.closeFiles())
		if err := errors.Join(errs...); err != nil {
			t.closeErr = fmt.Errorf("%w: restore: %w", ErrIO, err)
		}
	})
	return t.closeErr
}

func (t *Terminal) closeFiles() error {
	return errors.Join(t.in.Close(), t.out.Close())
}

// Size returns the terminal width and height, falling back to 80x24.
func (t *Terminal) Size() (width, height int) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// Draw writes one complete frame.
func (t *Terminal) Draw(frame string) error {
	if _, err := io.WriteString(t.out, frame); err != nil {
		return fmt.Errorf("%w: write: %w", ErrIO, err)
	}
	return nil
}

// ReadKey waits at most timeout for a keystroke. ok is false when the wait
// expired or only undecodable bytes arrived.
func (t *Terminal) ReadKey(timeout time.Duration) (Key, bool, error) {
	return t.keys.ReadKey(timeout)
}

// ReadPassword reads a line from the terminal without echo. It is meant for
// one-off prompts outside a dialog and does not need Open.
func ReadPassword(path string, prompt string) (string, error) {
	if path == "" {
		path = DefaultTTY
	}
	tty, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}
	defer tty.Close()

	fmt.Fprint(tty, prompt)
	pw, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprint(tty, "\r\n")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return string(pw), nil
}

// byteSource is the raw input a keyReader pulls from.
type byteSource interface {
	// Wait blocks until input is readable or timeout passes.
	Wait(timeout time.Duration) (bool, error)
	Read(p []byte) (int, error)
}

// fdSource reads a file descriptor with poll(2).
type fdSource int

func (fd fdSource) Wait(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, int(timeout/time.Millisecond))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n > 0 && fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, fmt.Errorf("poll: revents %#x", fds[0].Revents)
		}
		return n > 0, nil
	}
}

func (fd fdSource) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(int(fd), p)
		if err == unix.EINTR {
			continue
		}
		if n == 0 && err == nil {
			return 0, io.EOF
		}
		return n, err
	}
}

// keyReader turns a byteSource into keys. Bytes read past the first key stay
// pending for the next call.
type keyReader struct {
	src     byteSource
	pending []byte
	buf     [64]byte
}

func newKeyReader(src byteSource) *keyReader {
	return &keyReader{src: src}
}

func (r *keyReader) ReadKey(timeout time.Duration) (Key, bool, error) {
	if len(r.pending) == 0 {
		ready, err := r.src.Wait(timeout)
		if err != nil {
			return Key{}, false, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if !ready {
			return Key{}, false, nil
		}
		if err := r.fill(len(r.buf)); err != nil {
			return Key{}, false, err
		}
	}

	switch {
	case partialEscape(r.pending):
		// Bare ESC or a sequence cut short by the read: give the rest a moment.
		for partialEscape(r.pending) && len(r.pending) <= maxSeqBytes {
			got, err := r.more(maxSeqBytes)
			if err != nil {
				return Key{}, false, err
			}
			if !got {
				break
			}
		}
	case r.pending[0] >= 0xc0 && !utf8.FullRune(r.pending):
		if _, err := r.more(4); err != nil {
			return Key{}, false, err
		}
	}

	key, n, ok := Decode(r.pending)
	r.pending = r.pending[n:]
	return key, ok, nil
}

// more waits up to escWait for follow-on bytes and appends at most limit.
// It reports whether any arrived.
func (r *keyReader) more(limit int) (bool, error) {
	ready, err := r.src.Wait(escWait)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !ready {
		return false, nil
	}
	return true, r.fill(limit)
}

// partialEscape reports whether b is ESC alone, or ESC [ followed only by
// parameter bytes or part of a mouse report.
func partialEscape(b []byte) bool {
	if len(b) == 0 || b[0] != byteEsc {
		return false
	}
	if len(b) == 1 {
		return true
	}
	if b[1] != '[' {
		return false
	}
	if len(b) >= 3 && b[2] == 'M' {
		return len(b) < 6
	}
	for _, c := range b[2:] {
		if c < 0x20 || c > 0x3f {
			return false
		}
	}
	return true
}

func (r *keyReader) fill(limit int) error {
	if limit > len(r.buf) {
		limit = len(r.buf)
	}
	n, err := r.src.Read(r.buf[:limit])
	if err != nil {
		return fmt.Errorf("%w: read: %w", ErrIO, err)
	}
	r.pending = append(r.pending, r.buf[:n]...)
	return nil
}
