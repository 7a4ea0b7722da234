package xtc

import (
	"errors"
	"testing"
)

type chapterHit struct {
	name       string
	start, end int
}

func collectChapters(t *testing.T, r *Reader) []chapterHit {
	t.Helper()
	var hits []chapterHit
	err := r.ForEachChapter(func(name []byte, start, end int) error {
		hits = append(hits, chapterHit{string(name), start, end})
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachChapter: %v", err)
	}
	return hits
}

// On-disk chapter ranges are 1-based; the iterator converts to 0-based and
// drops records whose start lies outside the container.
func TestChapterBasic(t *testing.T) {
	c := testContainer{
		chapters: []testChapter{
			{name: "Ch1", start: 1, end: 2},
			{name: "SkipMe", start: 99, end: 99},
		},
		pages: []testPage{{w: 8, h: 1}, {w: 8, h: 1}},
	}
	r := openContainer(t, c.build(t))

	hits := collectChapters(t, r)
	if len(hits) != 1 {
		t.Fatalf("chapter count = %d, want 1", len(hits))
	}
	if hits[0] != (chapterHit{"Ch1", 0, 1}) {
		t.Errorf("chapter = %+v, want {Ch1 0 1}", hits[0])
	}
}

func TestChapterEndClamped(t *testing.T) {
	c := testContainer{
		chapters: []testChapter{{name: "Long", start: 2, end: 50}},
		pages:    []testPage{{w: 8, h: 1}, {w: 8, h: 1}, {w: 8, h: 1}},
	}
	r := openContainer(t, c.build(t))

	hits := collectChapters(t, r)
	if len(hits) != 1 || hits[0].start != 1 || hits[0].end != 2 {
		t.Errorf("hits = %+v, want one chapter (1,2)", hits)
	}
}

func TestChapterInvertedRangeSkipped(t *testing.T) {
	c := testContainer{
		chapters: []testChapter{{name: "Bad", start: 3, end: 1}},
		pages:    []testPage{{w: 8, h: 1}, {w: 8, h: 1}, {w: 8, h: 1}},
	}
	r := openContainer(t, c.build(t))

	if hits := collectChapters(t, r); len(hits) != 0 {
		t.Errorf("hits = %+v, want none", hits)
	}
}

// An all-zero record ends the list even when more records follow it.
func TestChapterZeroRecordTerminates(t *testing.T) {
	c := testContainer{
		chapters: []testChapter{
			{name: "One", start: 1, end: 1},
			{},
			{name: "Unreachable", start: 1, end: 1},
		},
		pages: []testPage{{w: 8, h: 1}},
	}
	r := openContainer(t, c.build(t))

	hits := collectChapters(t, r)
	if len(hits) != 1 || hits[0].name != "One" {
		t.Errorf("hits = %+v, want only One", hits)
	}
}

func TestChapterNone(t *testing.T) {
	r := openContainer(t, onePage().build(t))

	if hits := collectChapters(t, r); len(hits) != 0 {
		t.Errorf("hits = %+v, want none", hits)
	}
}

// When no section follows the chapter list, iteration runs to end of
// stream and a short read terminates it cleanly.
func TestChapterListAtEndOfFile(t *testing.T) {
	c := testContainer{
		chapters:     []testChapter{{name: "Tail", start: 1, end: 1}},
		chaptersLast: true,
		pages:        []testPage{{w: 8, h: 1}},
	}
	r := openContainer(t, c.build(t))

	hits := collectChapters(t, r)
	if len(hits) != 1 || hits[0].name != "Tail" {
		t.Errorf("hits = %+v, want only Tail", hits)
	}
}

// The iterator stops before a record that would cross into the next
// section, so a missing terminator cannot make it read the page table as
// chapter names.
func TestChapterBoundaryStopsIteration(t *testing.T) {
	c := testContainer{
		chapters: []testChapter{{name: "Only", start: 1, end: 1}},
		pages:    []testPage{{w: 8, h: 1}},
	}
	r := openContainer(t, c.build(t))

	hits := collectChapters(t, r)
	if len(hits) != 1 {
		t.Errorf("hits = %+v, want exactly one", hits)
	}
}

func TestChapterCallbackError(t *testing.T) {
	c := testContainer{
		chapters: []testChapter{
			{name: "One", start: 1, end: 1},
			{name: "Two", start: 1, end: 1},
		},
		pages: []testPage{{w: 8, h: 1}},
	}
	r := openContainer(t, c.build(t))

	boom := errors.New("boom")
	calls := 0
	err := r.ForEachChapter(func([]byte, int, int) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want callback error", err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times after error, want 1", calls)
	}
}
