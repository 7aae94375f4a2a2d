package terminal

import (
	"errors"
	"testing"
	"time"
	"unicode/utf8"
)

func TestDecodeTable(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want Key
		n    int
	}{
		{"bare esc", []byte{0x1b}, Key{Code: KeyEscape}, 1},
		{"cr", []byte{0x0d}, Key{Code: KeyEnter}, 1},
		{"lf", []byte{0x0a}, Key{Code: KeyEnter}, 1},
		{"del", []byte{0x7f}, Key{Code: KeyBackspace}, 1},
		{"ctrl-h", []byte{0x08}, Key{Code: KeyBackspace}, 1},
		{"tab", []byte{0x09}, Key{Code: KeyTab}, 1},
		{"ctrl-c", []byte{0x03}, Key{Code: KeyRune, Rune: 'c', Mod: ModCtrl}, 1},
		{"ctrl-a", []byte{0x01}, Key{Code: KeyRune, Rune: 'a', Mod: ModCtrl}, 1},
		{"ctrl-z", []byte{0x1a}, Key{Code: KeyRune, Rune: 'z', Mod: ModCtrl}, 1},
		{"up", []byte("\x1b[A"), Key{Code: KeyUp}, 3},
		{"down", []byte("\x1b[B"), Key{Code: KeyDown}, 3},
		{"right", []byte("\x1b[C"), Key{Code: KeyRight}, 3},
		{"left", []byte("\x1b[D"), Key{Code: KeyLeft}, 3},
		{"home", []byte("\x1b[H"), Key{Code: KeyHome}, 3},
		{"end", []byte("\x1b[F"), Key{Code: KeyEnd}, 3},
		{"delete", []byte("\x1b[3~"), Key{Code: KeyDelete}, 4},
		{"backtab", []byte("\x1b[Z"), Key{Code: KeyBackTab, Mod: ModShift}, 3},
		{"home tilde", []byte("\x1b[1~"), Key{Code: KeyHome}, 4},
		{"end tilde", []byte("\x1b[4~"), Key{Code: KeyEnd}, 4},
		{"ss3 up", []byte("\x1bOA"), Key{Code: KeyUp}, 3},
		{"alt-x", []byte("\x1bx"), Key{Code: KeyRune, Rune: 'x', Mod: ModAlt}, 2},
		{"alt-enter", []byte("\x1b\r"), Key{Code: KeyEnter, Mod: ModAlt}, 2},
		{"unknown csi", []byte("\x1b[15~"), Key{Code: KeyEscape}, 5},
		{"broken csi", []byte("\x1b["), Key{Code: KeyEscape}, 2},
		{"printable", []byte("a"), Key{Code: KeyRune, Rune: 'a'}, 1},
		{"space", []byte(" "), Key{Code: KeyRune, Rune: ' '}, 1},
		{"two byte utf8", []byte("é"), Key{Code: KeyRune, Rune: 'é'}, 2},
		{"four byte utf8", []byte("🚀"), Key{Code: KeyRune, Rune: '🚀'}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, ok := Decode(tt.in)
			if !ok {
				t.Fatalf("Decode(%q) dropped the input", tt.in)
			}
			if got != tt.want || n != tt.n {
				t.Fatalf("Decode(%q) = %v/%d, want %v/%d", tt.in, got, n, tt.want, tt.n)
			}
		})
	}
}

func TestDecodeShortestPrefix(t *testing.T) {
	in := []byte("\x1b[Aab")
	var got []Key
	for len(in) > 0 {
		k, n, ok := Decode(in)
		if ok {
			got = append(got, k)
		}
		in = in[n:]
	}
	want := []Key{{Code: KeyUp}, {Code: KeyRune, Rune: 'a'}, {Code: KeyRune, Rune: 'b'}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeDropsGarbage(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		n    int
	}{
		{"nul", []byte{0x00}, 1},
		{"file separator", []byte{0x1c}, 1},
		{"continuation byte", []byte{0x80, 'a'}, 1},
		{"invalid lead", []byte{0xff}, 1},
		{"truncated utf8", []byte{0xe2, 0x82}, 1},
		{"mouse report", []byte("\x1b[M !!x"), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n, ok := Decode(tt.in)
			if ok {
				t.Fatalf("Decode(%q) produced a key, want drop", tt.in)
			}
			if n != tt.n {
				t.Fatalf("Decode(%q) consumed %d bytes, want %d", tt.in, n, tt.n)
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{Code: KeyRune, Rune: 'c', Mod: ModCtrl}, "ctrl+c"},
		{Key{Code: KeyRune, Rune: 'x', Mod: ModAlt}, "alt+x"},
		{Key{Code: KeyBackTab, Mod: ModShift}, "shift+tab"},
		{Key{Code: KeyEnter, Mod: ModAlt}, "alt+enter"},
		{Key{Code: KeyUp}, "up"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// fakeSource hands out scripted chunks, one per Read. Wait reports ready
// while chunks remain.
type fakeSource struct {
	chunks [][]byte
	waits  []time.Duration
	err    error
}

func (f *fakeSource) Wait(timeout time.Duration) (bool, error) {
	f.waits = append(f.waits, timeout)
	if f.err != nil {
		return false, f.err
	}
	return len(f.chunks) > 0, nil
}

func (f *fakeSource) Read(p []byte) (int, error) {
	c := f.chunks[0]
	n := copy(p, c)
	if n < len(c) {
		f.chunks[0] = c[n:]
	} else {
		f.chunks = f.chunks[1:]
	}
	return n, nil
}

func TestKeyReaderTimeout(t *testing.T) {
	r := newKeyReader(&fakeSource{})
	_, ok, err := r.ReadKey(16 * time.Millisecond)
	if err != nil || ok {
		t.Fatalf("ReadKey on idle input = ok %v err %v, want no key", ok, err)
	}
}

func TestKeyReaderBareEscapeWaits(t *testing.T) {
	src := &fakeSource{chunks: [][]byte{{0x1b}}}
	r := newKeyReader(src)
	k, ok, err := r.ReadKey(16 * time.Millisecond)
	if err != nil || !ok || k.Code != KeyEscape {
		t.Fatalf("ReadKey = %v %v %v, want Escape", k, ok, err)
	}
	if len(src.waits) != 2 || src.waits[1] != escWait {
		t.Fatalf("waits = %v, want a second wait of %v", src.waits, escWait)
	}
}

func TestKeyReaderJoinsSplitSequence(t *testing.T) {
	src := &fakeSource{chunks: [][]byte{{0x1b}, []byte("[B")}}
	r := newKeyReader(src)
	k, ok, err := r.ReadKey(16 * time.Millisecond)
	if err != nil || !ok || k.Code != KeyDown {
		t.Fatalf("ReadKey = %v %v %v, want Down", k, ok, err)
	}
}

func TestKeyReaderKeepsPendingBytes(t *testing.T) {
	src := &fakeSource{chunks: [][]byte{[]byte("hi\r")}}
	r := newKeyReader(src)
	var got []Key
	for range 3 {
		k, ok, err := r.ReadKey(time.Millisecond)
		if err != nil || !ok {
			t.Fatalf("ReadKey = %v %v", ok, err)
		}
		got = append(got, k)
	}
	if got[0].Rune != 'h' || got[1].Rune != 'i' || got[2].Code != KeyEnter {
		t.Fatalf("got %v", got)
	}
	if len(src.waits) != 1 {
		t.Fatalf("pending bytes should not wait again, waits = %v", src.waits)
	}
}

func TestKeyReaderCompletesUTF8(t *testing.T) {
	src := &fakeSource{chunks: [][]byte{{0xc3}, {0xa9}}}
	r := newKeyReader(src)
	k, ok, err := r.ReadKey(time.Millisecond)
	if err != nil || !ok || k.Rune != 'é' {
		t.Fatalf("ReadKey = %v %v %v, want é", k, ok, err)
	}
}

func TestKeyReaderWrapsErrors(t *testing.T) {
	r := newKeyReader(&fakeSource{err: errors.New("boom")})
	_, _, err := r.ReadKey(time.Millisecond)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate long = %q", got)
	}
	if got := Truncate("héllo wörld", 4); got != "héll..." {
		t.Errorf("Truncate utf8 = %q", got)
	}
}

func TestDecodeReplacementCharacter(t *testing.T) {
	k, n, ok := Decode([]byte("\xef\xbf\xbdx"))
	if !ok || n != 3 || k.Code != KeyRune || k.Rune != utf8.RuneError {
		t.Fatalf("Decode(U+FFFD) = %v %d %v, want the rune over 3 bytes", k, n, ok)
	}
}

func TestKeyReaderJoinsSplitCSI(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   Key
	}{
		{"after bracket", [][]byte{[]byte("\x1b["), []byte("B")}, Key{Code: KeyDown}},
		{"after params", [][]byte{[]byte("\x1b[3"), []byte("~")}, Key{Code: KeyDelete}},
		{"three reads", [][]byte{{0x1b}, []byte("["), []byte("A")}, Key{Code: KeyUp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{chunks: tt.chunks}
			r := newKeyReader(src)
			k, ok, err := r.ReadKey(time.Millisecond)
			if err != nil || !ok || k != tt.want {
				t.Fatalf("ReadKey = %v %v %v, want %v", k, ok, err, tt.want)
			}
			if len(src.chunks) != 0 {
				t.Fatalf("left %d chunks unread", len(src.chunks))
			}
		})
	}
}

func TestPartialEscape(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"\x1b", true},
		{"\x1b[", true},
		{"\x1b[1;5", true},
		{"\x1b[M !", true},
		{"\x1b[M !!x", false},
		{"\x1b[A", false},
		{"\x1bx", false},
		{"a", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := partialEscape([]byte(tt.in)); got != tt.want {
			t.Errorf("partialEscape(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
