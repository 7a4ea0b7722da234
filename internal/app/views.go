// The four views. Each has a tap handler (runs first in the tick) and a
// render method. Views draw with the SDK text and line primitives; the
// reading view hands the heavy lifting to the render pipeline.
package app

import (
	"strconv"

	"github.com/jpl-au/xtc"
	"github.com/jpl-au/xtc/internal/library"
	"github.com/jpl-au/xtc/internal/render"
	"github.com/jpl-au/xtc/sdk"
)

// listFont is the VLW font used by every textual view.
const listFont = "sans18.vlw"

const (
	listRowHeight = 48
	listTopMargin = 40
	maxChapters   = 128
)

// listRows returns how many book rows fit the panel.
func (s *Shell) listRows() int {
	n := (s.h - 2*listTopMargin) / listRowHeight
	if n < 1 {
		n = 1
	}
	return n
}

// --- Book list ---

func (s *Shell) bookListTap(t Tap) {
	entries := s.lib.Entries()
	switch tapRegion(t.X, s.w) {
	case regionLeft:
		if s.st.ListOffset > 0 {
			s.st.ListOffset -= s.listRows()
			if s.st.ListOffset < 0 {
				s.st.ListOffset = 0
			}
			s.st.Selected = s.st.ListOffset
			s.st.NeedsRedraw = true
		}
	case regionCentre:
		if len(entries) > 0 {
			s.st.Selected++
			if s.st.Selected >= len(entries) {
				s.st.Selected = 0
				s.st.ListOffset = 0
			}
			if s.st.Selected >= s.st.ListOffset+s.listRows() {
				s.st.ListOffset = s.st.Selected
			}
			s.st.NeedsRedraw = true
		}
	case regionRight:
		s.openSelected()
	}
}

// openSelected enters the reading view on the selected book, restoring
// the saved position.
func (s *Shell) openSelected() {
	entries := s.lib.Entries()
	if len(entries) == 0 {
		return
	}
	e := entries[s.st.Selected]
	s.st.Page = render.PageState{RestorePending: true}
	if saved, ok := s.pos.Load(e.Filename); ok {
		s.st.Page.Page = int(saved)
	}
	s.st.TOCSelected = 0
	s.st.TOCOffset = 0
	s.st.Screen = ScreenReading
	s.st.NeedsRedraw = true
}

func (s *Shell) renderBookList() {
	d := s.host.Display
	d.FillScreen(sdk.White)
	if err := d.SetFont(listFont); err != nil {
		s.host.Log.Errorf("app: font %s: %v", listFont, err)
	}

	d.DrawText(16, 24, "Books", sdk.Black)
	d.HLine(0, listTopMargin-8, s.w, sdk.Black)

	entries := s.lib.Entries()
	y := listTopMargin
	for i := s.st.ListOffset; i < len(entries) && y+listRowHeight <= s.h-listTopMargin; i++ {
		e := entries[i]
		if i == s.st.Selected {
			d.DrawRect(4, y, s.w-8, listRowHeight, sdk.Black)
		}
		d.DrawText(16, y+18, e.Title, sdk.Black)
		line := e.Author
		if e.Progress > 0 {
			if line != "" {
				line += "  "
			}
			line += strconv.Itoa(int(e.Progress)) + "%"
		}
		d.DrawText(16, y+38, line, sdk.DarkGray)
		y += listRowHeight
	}

	if len(entries) == 0 {
		d.DrawText(16, s.h/2, "No books in "+library.BooksDir, sdk.Black)
	}
	if s.lib.Overflow() {
		d.DrawText(16, s.h-12, "More books than can be shown", sdk.DarkGray)
	}
	d.Update()
}

// --- Table of contents ---

func (s *Shell) tocTap(t Tap) {
	switch tapRegion(t.X, s.w) {
	case regionLeft:
		s.st.Screen = ScreenBookList
		s.st.NeedsRedraw = true
	case regionCentre:
		if len(s.chapters) > 0 {
			s.st.TOCSelected = (s.st.TOCSelected + 1) % len(s.chapters)
			if s.st.TOCSelected < s.st.TOCOffset ||
				s.st.TOCSelected >= s.st.TOCOffset+s.listRows() {
				s.st.TOCOffset = s.st.TOCSelected
			}
			s.st.NeedsRedraw = true
		}
	case regionRight:
		if s.st.TOCSelected < len(s.chapters) {
			s.st.Page.Page = s.chapters[s.st.TOCSelected].start
			s.savePosition()
		}
		s.st.Screen = ScreenReading
		s.st.NeedsRedraw = true
	}
}

func (s *Shell) renderTOC() error {
	e, ok := s.currentBook()
	if !ok {
		s.st.Screen = ScreenBookList
		s.renderBookList()
		return nil
	}
	if err := s.loadChapters(e); err != nil {
		return err
	}

	d := s.host.Display
	d.FillScreen(sdk.White)
	if err := d.SetFont(listFont); err != nil {
		s.host.Log.Errorf("app: font %s: %v", listFont, err)
	}
	d.DrawText(16, 24, e.Title, sdk.Black)
	d.HLine(0, listTopMargin-8, s.w, sdk.Black)

	if len(s.chapters) == 0 {
		d.DrawText(16, s.h/2, "No chapters", sdk.Black)
	}
	y := listTopMargin
	for i := s.st.TOCOffset; i < len(s.chapters) && y+listRowHeight <= s.h-listTopMargin; i++ {
		ch := s.chapters[i]
		if i == s.st.TOCSelected {
			d.DrawRect(4, y, s.w-8, listRowHeight, sdk.Black)
		}
		d.DrawText(16, y+18, ch.name, sdk.Black)
		pages := "p. " + strconv.Itoa(ch.start+1) + " - " + strconv.Itoa(ch.end+1)
		d.DrawText(16, y+38, pages, sdk.DarkGray)
		y += listRowHeight
	}
	d.Update()
	return nil
}

// loadChapters refreshes the chapter cache for the current book.
func (s *Shell) loadChapters(e library.Entry) error {
	s.chapters = s.chapters[:0]
	f, err := s.openBookFile(e)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := xtc.Open(xtc.NewIOStream(f))
	if err != nil {
		return err
	}
	return r.ForEachChapter(func(name []byte, start, end int) error {
		if len(s.chapters) < maxChapters {
			s.chapters = append(s.chapters, chapterEntry{string(name), start, end})
		}
		return nil
	})
}

// --- Reading ---

func (s *Shell) readingTap(t Tap) {
	switch tapRegion(t.X, s.w) {
	case regionLeft:
		if s.st.Page.Page > 0 {
			s.st.Page.Page--
			s.savePosition()
			s.st.NeedsRedraw = true
		}
	case regionCentre:
		s.st.Screen = ScreenTOC
		s.st.NeedsRedraw = true
	case regionRight:
		if s.st.Page.Page+1 < s.st.Page.PageCount {
			s.st.Page.Page++
			s.savePosition()
			s.st.NeedsRedraw = true
		}
	}
}

// savePosition commits the current page before the next display update;
// a crash right after a page turn resumes on the page being shown.
func (s *Shell) savePosition() {
	if e, ok := s.currentBook(); ok {
		s.pos.Save(e.Filename, uint32(s.st.Page.Page))
	}
}

func (s *Shell) renderReading() error {
	e, ok := s.currentBook()
	if !ok {
		s.st.Screen = ScreenBookList
		s.renderBookList()
		return nil
	}
	f, err := s.openBookFile(e)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.pipe.RenderPage(xtc.NewIOStream(f), &s.st.Page); err != nil {
		return err
	}
	s.host.Display.Update()
	return nil
}

func (s *Shell) currentBook() (library.Entry, bool) {
	entries := s.lib.Entries()
	if s.st.Selected < 0 || s.st.Selected >= len(entries) {
		return library.Entry{}, false
	}
	return entries[s.st.Selected], true
}

func (s *Shell) openBookFile(e library.Entry) (sdk.File, error) {
	path := library.BooksDir + "/" + e.Filename
	if len(path) > render.MaxPath {
		return nil, render.ErrPathTooLong
	}
	return s.host.FS.Open(path)
}

// --- Error ---

func (s *Shell) errorTap(Tap) {
	if err := s.lib.Refresh(); err != nil {
		s.fail("Books", err)
		return
	}
	s.st.Screen = ScreenBookList
	s.clampSelection()
	s.st.NeedsRedraw = true
}

func (s *Shell) renderError() {
	d := s.host.Display
	d.FillScreen(sdk.White)
	if err := d.SetFont(listFont); err != nil {
		s.host.Log.Errorf("app: font %s: %v", listFont, err)
	}
	d.DrawText(16, s.h/2-24, "Something went wrong", sdk.Black)
	d.DrawText(16, s.h/2, s.st.ErrMsg, sdk.Black)
	d.DrawText(16, s.h/2+32, "Tap anywhere to rescan", sdk.DarkGray)
	d.Update()
}
