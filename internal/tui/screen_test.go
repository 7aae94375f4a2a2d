package tui

import (
	"errors"
	"time"

	"github.com/moasq/opencode-helix/internal/terminal"
)

var errScriptDone = errors.New("key script exhausted")

var timeZero time.Time

// fakeScreen replays scripted keys and records every frame drawn.
type fakeScreen struct {
	w, h    int
	keys    []terminal.Key
	frames  []string
	drawErr error
}

func newFakeScreen(keys ...terminal.Key) *fakeScreen {
	return &fakeScreen{w: 100, h: 40, keys: keys}
}

func (f *fakeScreen) Size() (int, int) { return f.w, f.h }

func (f *fakeScreen) Draw(frame string) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeScreen) ReadKey(time.Duration) (terminal.Key, bool, error) {
	if len(f.keys) == 0 {
		return terminal.Key{}, false, errScriptDone
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k, true, nil
}

func runes(s string) []terminal.Key {
	var keys []terminal.Key
	for _, r := range s {
		keys = append(keys, terminal.Key{Code: terminal.KeyRune, Rune: r})
	}
	return keys
}

func key(code terminal.KeyCode) terminal.Key {
	return terminal.Key{Code: code}
}

func ctrl(r rune) terminal.Key {
	return terminal.Key{Code: terminal.KeyRune, Rune: r, Mod: terminal.ModCtrl}
}

func keys(groups ...any) []terminal.Key {
	var out []terminal.Key
	for _, g := range groups {
		switch v := g.(type) {
		case string:
			out = append(out, runes(v)...)
		case terminal.Key:
			out = append(out, v)
		case terminal.KeyCode:
			out = append(out, key(v))
		}
	}
	return out
}
