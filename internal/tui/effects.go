package tui

import (
	"time"
	"unicode/utf8"
)

// Effects switches the dialog animations. The zero value disables all of them
// and keeps the caret steadily visible.
type Effects struct {
	Blink      bool
	Typewriter bool
	Scanline   bool
}

// AllEffects enables every animation.
func AllEffects() Effects {
	return Effects{Blink: true, Typewriter: true, Scanline: true}
}

const (
	blinkRate      = 530 * time.Millisecond
	typewriterRate = 60 // runes per second
	scanlineStep   = 90 * time.Millisecond
)

// Blinker toggles caret visibility every blinkRate.
type Blinker struct {
	enabled bool
	visible bool
	last    time.Time
}

func newBlinker(enabled bool, now time.Time) *Blinker {
	return &Blinker{enabled: enabled, visible: true, last: now}
}

// Tick advances the blink timer.
func (b *Blinker) Tick(now time.Time) {
	if !b.enabled {
		return
	}
	if now.Sub(b.last) >= blinkRate {
		b.visible = !b.visible
		b.last = now
	}
}

// Reset shows the caret and restarts the timer, so typing never hides it.
func (b *Blinker) Reset(now time.Time) {
	b.visible = true
	b.last = now
}

// Visible reports whether the caret is drawn this frame.
func (b *Blinker) Visible() bool {
	return !b.enabled || b.visible
}

// Typewriter reveals a string one rune at a time.
type Typewriter struct {
	text  string
	shown int
	total int
	delay time.Duration
	last  time.Time
}

func newTypewriter(text string, enabled bool, now time.Time) *Typewriter {
	tw := &Typewriter{
		text:  text,
		total: utf8.RuneCountInString(text),
		delay: time.Second / typewriterRate,
		last:  now,
	}
	if !enabled {
		tw.Skip()
	}
	return tw
}

// Tick reveals however many runes are due since the last tick.
func (tw *Typewriter) Tick(now time.Time) {
	if tw.Done() {
		return
	}
	steps := int(now.Sub(tw.last) / tw.delay)
	if steps <= 0 {
		return
	}
	tw.shown = min(tw.shown+steps, tw.total)
	tw.last = now
}

// Skip reveals the whole text.
func (tw *Typewriter) Skip() {
	tw.shown = tw.total
}

// Done reports whether the whole text is visible.
func (tw *Typewriter) Done() bool {
	return tw.shown >= tw.total
}

// Text returns the revealed prefix.
func (tw *Typewriter) Text() string {
	if tw.Done() {
		return tw.text
	}
	n := 0
	for i := range tw.text {
		if n == tw.shown {
			return tw.text[:i]
		}
		n++
	}
	return tw.text
}

// Scanline is a dim row that sweeps down the dialog frame.
type Scanline struct {
	enabled bool
	row     int
	height  int
	last    time.Time
}

func newScanline(enabled bool, now time.Time) *Scanline {
	return &Scanline{enabled: enabled, last: now}
}

// Tick moves the line one row per scanlineStep, wrapping at the height set by
// the last SetHeight.
func (s *Scanline) Tick(now time.Time) {
	if !s.enabled || s.height <= 0 {
		return
	}
	if now.Sub(s.last) >= scanlineStep {
		s.row = (s.row + 1) % s.height
		s.last = now
	}
}

// SetHeight updates the sweep range after a resize.
func (s *Scanline) SetHeight(h int) {
	s.height = h
	if s.row >= h {
		s.row = 0
	}
}

// Row returns the row currently dimmed, or -1 when disabled.
func (s *Scanline) Row() int {
	if !s.enabled {
		return -1
	}
	return s.row
}
