// Shell wiring and the cooperative tick loop.
//
// The host calls Init once, Tick periodically, and OnTap from the gesture
// path. Nothing blocks: a render finishes within the tick that started it,
// and input arriving mid-render lands in the pending-tap slot for the next
// tick. Every failure on the tick path is captured as a short message and
// shown on the error screen rather than propagated to the host.
package app

import (
	"errors"

	"github.com/jpl-au/xtc/internal/library"
	"github.com/jpl-au/xtc/internal/position"
	"github.com/jpl-au/xtc/internal/render"
	"github.com/jpl-au/xtc/sdk"
)

// Shell owns the host capabilities and the application state.
type Shell struct {
	host sdk.Host
	lib  *library.Library
	pos  *position.Store
	pipe *render.Pipeline
	st   State
	w, h int

	chapters []chapterEntry // refreshed by the TOC view
}

type chapterEntry struct {
	name       string
	start, end int
}

// New wires a shell onto the host capabilities.
func New(host sdk.Host) *Shell {
	s := &Shell{host: host}
	s.pos = position.New(host.KV, host.Log)
	s.lib = library.New(host.FS, s.pos, host.Log)
	s.pipe = render.NewPipeline(host.Display)
	return s
}

// State exposes the application state for the host glue and tests.
func (s *Shell) State() *State { return &s.st }

// Init mounts the card and loads the library.
func (s *Shell) Init() error {
	if s.host.Display == nil || s.host.FS == nil || s.host.KV == nil || s.host.Log == nil {
		return errors.New("app: missing host capability")
	}
	s.w, s.h = s.host.Display.Size()

	if !s.host.FS.Mounted() {
		if err := s.host.FS.Mount(); err != nil {
			s.fail("SD mount", err)
			return nil
		}
	}
	s.loadBooks()
	return nil
}

// OnTap records a tap for the next tick. Only the latest tap is kept.
func (s *Shell) OnTap(x, y int) {
	s.st.pendingTap = Tap{X: x, Y: y}
	s.st.hasTap = true
}

// Tick dispatches any pending tap, then redraws if something changed.
func (s *Shell) Tick(nowMS int32) {
	if s.st.hasTap {
		tap := s.st.pendingTap
		s.st.hasTap = false
		s.dispatchTap(tap)
	}
	if s.st.NeedsRedraw {
		s.st.NeedsRedraw = false
		if err := s.renderCurrent(); err != nil {
			s.fail("Render", err)
		}
	}
}

func (s *Shell) dispatchTap(t Tap) {
	switch s.st.Screen {
	case ScreenBookList:
		s.bookListTap(t)
	case ScreenTOC:
		s.tocTap(t)
	case ScreenReading:
		s.readingTap(t)
	case ScreenError:
		s.errorTap(t)
	}
}

func (s *Shell) renderCurrent() error {
	switch s.st.Screen {
	case ScreenBookList:
		s.renderBookList()
	case ScreenTOC:
		return s.renderTOC()
	case ScreenReading:
		return s.renderReading()
	case ScreenError:
		s.renderError()
	}
	return nil
}

// fail captures err for the error screen.
func (s *Shell) fail(prefix string, err error) {
	s.st.ErrMsg = prefix + ": " + err.Error()
	s.st.Screen = ScreenError
	s.st.NeedsRedraw = true
}

// loadBooks populates the library and lands on the book list.
func (s *Shell) loadBooks() {
	if err := s.lib.Load(); err != nil {
		s.fail("Books", err)
		return
	}
	s.st.Screen = ScreenBookList
	s.clampSelection()
	s.st.NeedsRedraw = true
}

func (s *Shell) clampSelection() {
	n := len(s.lib.Entries())
	if s.st.Selected >= n {
		s.st.Selected = n - 1
	}
	if s.st.Selected < 0 {
		s.st.Selected = 0
	}
	if s.st.ListOffset > s.st.Selected {
		s.st.ListOffset = s.st.Selected
	}
}

// region is a horizontal third of the panel.
type region int

const (
	regionLeft region = iota
	regionCentre
	regionRight
)

// tapRegion partitions every x into exactly one third: back, select,
// forward.
func tapRegion(x, w int) region {
	switch {
	case x < w/3:
		return regionLeft
	case x < 2*w/3:
		return regionCentre
	default:
		return regionRight
	}
}
