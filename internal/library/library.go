// Package library maintains the in-memory book list: filenames, cached
// metadata, and reading progress.
//
// Startup prefers the on-disk catalog: one small file read instead of
// opening every book. When the catalog is missing or damaged the books
// directory is scanned, each file probed through the container reader for
// its page count and metadata, and the catalog rewritten. Progress always
// comes fresh from the position store; the catalog records a progress
// value when written, but loading ignores it.
package library

import (
	"io"
	"slices"
	"strings"

	"github.com/jpl-au/xtc"
	"github.com/jpl-au/xtc/catalog"
	"github.com/jpl-au/xtc/internal/position"
	"github.com/jpl-au/xtc/internal/render"
	"github.com/jpl-au/xtc/sdk"
)

// Well-known paths.
const (
	BooksDir    = "/sdcard/books"
	CatalogDir  = "/sdcard/portal/.xtcreader"
	CatalogPath = CatalogDir + "/catalog.bin"
)

// MaxBooks is the fixed capacity of the in-memory list. Larger libraries
// set the overflow flag and show the first MaxBooks entries.
const MaxBooks = 128

// Entry is one book in the list.
type Entry struct {
	Filename  string
	Title     string
	Author    string
	PageCount uint16
	Progress  uint8 // 0..100
}

// Library owns the book list.
type Library struct {
	fs       sdk.Filesystem
	pos      *position.Store
	log      sdk.Logger
	entries  []Entry
	overflow bool
}

func New(fs sdk.Filesystem, pos *position.Store, log sdk.Logger) *Library {
	return &Library{fs: fs, pos: pos, log: log}
}

// Entries returns the current book list, sorted.
func (l *Library) Entries() []Entry { return l.entries }

// Overflow reports whether the books directory held more than MaxBooks.
func (l *Library) Overflow() bool { return l.overflow }

// Load populates the list from the catalog when one is present and valid,
// falling back to a directory scan.
func (l *Library) Load() error {
	if err := l.ensureMounted(); err != nil {
		return err
	}
	if l.loadCatalog() {
		return nil
	}
	return l.scan()
}

// Refresh discards the catalog and rescans the books directory.
func (l *Library) Refresh() error {
	if err := l.ensureMounted(); err != nil {
		return err
	}
	if err := l.fs.Remove(CatalogPath); err != nil && err != sdk.ErrNotFound {
		l.log.Errorf("library: remove catalog: %v", err)
	}
	return l.scan()
}

func (l *Library) ensureMounted() error {
	if l.fs.Mounted() {
		return nil
	}
	return l.fs.Mount()
}

// loadCatalog reports whether the catalog produced a usable list.
func (l *Library) loadCatalog() bool {
	f, err := l.fs.Open(CatalogPath)
	if err != nil {
		return false
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return false
	}

	var records [MaxBooks]catalog.Record
	n, err := catalog.Decode(data, records[:])
	if err != nil {
		l.log.Infof("library: catalog unusable: %v", err)
		return false
	}

	l.entries = l.entries[:0]
	l.overflow = (len(data)-catalog.HeaderSize)/catalog.RecordSize > MaxBooks
	for _, r := range records[:n] {
		e := Entry{
			Filename:  r.Filename,
			Title:     r.Title,
			Author:    r.Author,
			PageCount: r.PageCount,
		}
		if e.Title == "" {
			e.Title = e.Filename
		}
		e.Progress = l.progressFor(e.Filename, e.PageCount)
		l.entries = append(l.entries, e)
	}
	l.sort()
	return true
}

// scan rebuilds the list from the books directory and rewrites the
// catalog (best-effort).
func (l *Library) scan() error {
	names, err := l.fs.ReadDir(BooksDir)
	if err != nil {
		return err
	}

	l.entries = l.entries[:0]
	l.overflow = false
	for _, de := range names {
		if de.IsDir || !IsBookName(de.Name) {
			continue
		}
		if len(l.entries) >= MaxBooks {
			l.overflow = true
			break
		}
		l.entries = append(l.entries, l.probe(de.Name))
	}
	l.sort()
	l.writeCatalog()
	return nil
}

// IsBookName reports whether name is a readable book file: suffix .xtc or
// .xtch, case-insensitive, and not a dot-file.
func IsBookName(name string) bool {
	if name == "" || name[0] == '.' {
		return false
	}
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xtc") || strings.HasSuffix(lower, ".xtch")
}

// probe opens one book for its page count and metadata. Any failure falls
// back to the filename as the title; a book that cannot be probed can
// still be listed and the error shown when it is opened.
func (l *Library) probe(name string) Entry {
	e := Entry{Filename: clampLen(name, catalog.FilenameSlot-1)}
	e.Title = e.Filename

	path := BooksDir + "/" + name
	if len(path) > render.MaxPath {
		l.log.Errorf("library: %v: %s", render.ErrPathTooLong, name)
		return e
	}
	f, err := l.fs.Open(path)
	if err != nil {
		l.log.Errorf("library: open %s: %v", name, err)
		return e
	}
	defer f.Close()

	r, err := xtc.Open(xtc.NewIOStream(f))
	if err != nil {
		l.log.Errorf("library: probe %s: %v", name, err)
		return e
	}
	e.PageCount = uint16(r.PageCount())

	var m xtc.Metadata
	if err := r.ReadMetadata(&m); err == nil {
		if len(m.Title()) > 0 {
			e.Title = clampLen(string(m.Title()), catalog.TitleSlot-1)
		}
		e.Author = clampLen(string(m.Author()), catalog.AuthorSlot-1)
	}
	e.Progress = l.progressFor(name, e.PageCount)
	return e
}

// progressFor maps a saved page index to 0..100. Single-page books and
// books never opened sit at 0.
func (l *Library) progressFor(name string, pages uint16) uint8 {
	saved, ok := l.pos.Load(name)
	if !ok || pages < 2 {
		return 0
	}
	p := uint64(saved) * 100 / uint64(pages-1)
	if p > 100 {
		p = 100
	}
	return uint8(p)
}

// sort orders by (author, title, filename), ASCII case-insensitive.
func (l *Library) sort() {
	slices.SortFunc(l.entries, func(a, b Entry) int {
		if c := compareFold(a.Author, b.Author); c != 0 {
			return c
		}
		if c := compareFold(a.Title, b.Title); c != 0 {
			return c
		}
		return compareFold(a.Filename, b.Filename)
	})
}

// compareFold is an allocation-free ASCII case-insensitive compare.
func compareFold(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := lowerASCII(a[i]), lowerASCII(b[i])
		if ca != cb {
			return int(ca) - int(cb)
		}
	}
	return len(a) - len(b)
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func clampLen(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// writeCatalog persists the current list. Failures are logged, never
// surfaced: the catalog is an accelerator, not state.
func (l *Library) writeCatalog() {
	if err := l.fs.MkdirAll(CatalogDir); err != nil {
		l.log.Errorf("library: mkdir %s: %v", CatalogDir, err)
		return
	}

	records := make([]catalog.Record, len(l.entries))
	for i, e := range l.entries {
		records[i] = catalog.Record{
			Title:     e.Title,
			Author:    e.Author,
			PageCount: e.PageCount,
			Progress:  e.Progress,
			Filename:  e.Filename,
		}
	}
	buf := make([]byte, catalog.HeaderSize+len(records)*catalog.RecordSize)
	n := catalog.Encode(buf, records)
	if n == 0 {
		l.log.Errorf("library: catalog encode failed for %d entries", len(records))
		return
	}

	f, err := l.fs.Create(CatalogPath)
	if err != nil {
		l.log.Errorf("library: create catalog: %v", err)
		return
	}
	if _, err := f.Write(buf[:n]); err != nil {
		l.log.Errorf("library: write catalog: %v", err)
	}
	if err := f.Close(); err != nil {
		l.log.Errorf("library: close catalog: %v", err)
	}
}
