// Package app is the application shell: one State, one pending tap, and
// the tick loop that dispatches input and redraws the current view.
package app

import "github.com/jpl-au/xtc/internal/render"

// Screen identifies the current view.
type Screen int

const (
	ScreenBookList Screen = iota
	ScreenTOC
	ScreenReading
	ScreenError
)

// Tap is a touch position in panel coordinates.
type Tap struct {
	X, Y int
}

// State is the whole of the application's mutable state. It is owned by
// the Shell and mutated only on the tick path: input handlers record a
// pending tap and the next tick acts on it.
type State struct {
	Screen      Screen
	Selected    int // selected book in the library list
	ListOffset  int // first visible book row
	TOCSelected int
	TOCOffset   int
	Page        render.PageState
	NeedsRedraw bool
	ErrMsg      string

	pendingTap Tap
	hasTap     bool
}
