package terminal

import (
	"unicode/utf8"
)

// KeyCode identifies a decoded key.
type KeyCode int

const (
	KeyNone KeyCode = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackTab
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

func (k KeyCode) String() string {
	switch k {
	case KeyRune:
		return "rune"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "esc"
	case KeyTab:
		return "tab"
	case KeyBackTab:
		return "shift+tab"
	case KeyBackspace:
		return "backspace"
	case KeyDelete:
		return "delete"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	default:
		return "none"
	}
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

// Key is a single decoded keystroke.
type Key struct {
	Code KeyCode
	Rune rune // set when Code == KeyRune
	Mod  Modifier
}

// Has reports whether every modifier in m is held.
func (k Key) Has(m Modifier) bool {
	return k.Mod&m == m
}

// IsCtrl reports whether k is Ctrl+r.
func (k Key) IsCtrl(r rune) bool {
	return k.Code == KeyRune && k.Rune == r && k.Has(ModCtrl)
}

// IsPlain reports whether k is a printable rune typed without Ctrl or Alt.
func (k Key) IsPlain() bool {
	return k.Code == KeyRune && k.Mod&(ModCtrl|ModAlt) == 0
}

func (k Key) String() string {
	var s string
	if k.Has(ModCtrl) {
		s += "ctrl+"
	}
	if k.Has(ModAlt) {
		s += "alt+"
	}
	if k.Code == KeyRune {
		return s + string(k.Rune)
	}
	if k.Code == KeyBackTab {
		return k.Code.String()
	}
	if k.Has(ModShift) {
		s += "shift+"
	}
	return s + k.Code.String()
}

// Raw byte values the decoder cares about.
const (
	byteEsc       = 0x1b
	byteCR        = 0x0d
	byteLF        = 0x0a
	byteTab       = 0x09
	byteBackspace = 0x7f
	byteCtrlH     = 0x08
)

// csiKeys maps complete CSI sequences (the bytes after "ESC [") to keys.
var csiKeys = map[string]Key{
	"A":  {Code: KeyUp},
	"B":  {Code: KeyDown},
	"C":  {Code: KeyRight},
	"D":  {Code: KeyLeft},
	"H":  {Code: KeyHome},
	"F":  {Code: KeyEnd},
	"Z":  {Code: KeyBackTab, Mod: ModShift},
	"3~": {Code: KeyDelete},
	"1~": {Code: KeyHome},
	"7~": {Code: KeyHome},
	"4~": {Code: KeyEnd},
	"8~": {Code: KeyEnd},
}

// ss3Keys maps "ESC O x" sequences sent in application cursor mode.
var ss3Keys = map[byte]Key{
	'A': {Code: KeyUp},
	'B': {Code: KeyDown},
	'C': {Code: KeyRight},
	'D': {Code: KeyLeft},
	'H': {Code: KeyHome},
	'F': {Code: KeyEnd},
}

// Decode decodes the first key in b. It returns the key, the number of bytes
// consumed, and whether a key was produced. A false ok with n > 0 means the
// bytes were consumed and dropped (malformed UTF-8, mouse reports, stray
// control bytes). A lone ESC decodes as Escape; callers that want to tell
// ESC apart from the start of a sequence must wait for follow-on bytes before
// calling Decode.
func Decode(b []byte) (key Key, n int, ok bool) {
	if len(b) == 0 {
		return Key{}, 0, false
	}

	c := b[0]
	switch {
	case c == byteEsc:
		return decodeEscape(b)
	case c == byteCR || c == byteLF:
		return Key{Code: KeyEnter}, 1, true
	case c == byteBackspace || c == byteCtrlH:
		return Key{Code: KeyBackspace}, 1, true
	case c == byteTab:
		return Key{Code: KeyTab}, 1, true
	case c >= 0x01 && c <= 0x1a:
		return Key{Code: KeyRune, Rune: rune(c) + 0x60, Mod: ModCtrl}, 1, true
	case c >= 0x20 && c <= 0x7e:
		return Key{Code: KeyRune, Rune: rune(c)}, 1, true
	case c >= 0xc0:
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			return Key{}, 1, false
		}
		return Key{Code: KeyRune, Rune: r}, size, true
	default:
		// NUL, 0x1c..0x1f and stray continuation bytes.
		return Key{}, 1, false
	}
}

func decodeEscape(b []byte) (Key, int, bool) {
	if len(b) == 1 {
		return Key{Code: KeyEscape}, 1, true
	}

	switch next := b[1]; {
	case next == '[':
		return decodeCSI(b)
	case next == 'O' && len(b) >= 3:
		if k, ok := ss3Keys[b[2]]; ok {
			return k, 3, true
		}
		return Key{Code: KeyEscape}, 3, true
	case next == byteCR:
		return Key{Code: KeyEnter, Mod: ModAlt}, 2, true
	case next >= 0x20 && next <= 0x7e:
		return Key{Code: KeyRune, Rune: rune(next), Mod: ModAlt}, 2, true
	default:
		// ESC followed by something that cannot start a sequence: the ESC
		// stands alone and the rest is decoded on the next call.
		return Key{Code: KeyEscape}, 1, true
	}
}

// decodeCSI decodes "ESC [ params final". Unknown sequences are consumed
// through their final byte and reported as Escape.
func decodeCSI(b []byte) (Key, int, bool) {
	// X10 mouse report: ESC [ M Cb Cx Cy.
	if len(b) >= 3 && b[2] == 'M' {
		if len(b) >= 6 {
			return Key{}, 6, false
		}
		return Key{}, len(b), false
	}

	i := 2
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x3f {
		i++
	}
	if i >= len(b) || b[i] < 0x40 || b[i] > 0x7e {
		// Truncated or broken sequence.
		return Key{Code: KeyEscape}, i, true
	}
	seq := string(b[2 : i+1])
	if k, ok := csiKeys[seq]; ok {
		return k, i + 1, true
	}
	return Key{Code: KeyEscape}, i + 1, true
}
