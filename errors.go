// Package xtc reads XTC and XTCH e-book containers: fixed-layout binary
// files holding pre-rendered page bitmaps (1-bit XTG or 2-bit grayscale XTH),
// optional metadata, thumbnails, and a chapter list.
//
// The reader is built for small devices: it never loads the page table or a
// full page into memory. Headers, metadata, chapter records, and page-table
// entries are read on demand at known offsets, and page payloads stream
// through a caller-sized scratch buffer. The reader works over any Stream
// (an absolute-seek + read byte source) and owns no state beyond the parsed
// 56-byte header.
package xtc

import "errors"

// Sentinel errors for programmatic handling. Callers use errors.Is to
// distinguish malformed files (ErrInvalidMagic, ErrCorruptedHeader,
// ErrInvalidPageMagic) from backend failures (ErrIO) and caller mistakes
// (ErrPageOutOfRange, ErrBufferTooSmall).
var (
	ErrEndOfStream            = errors.New("unexpected end of stream")
	ErrIO                     = errors.New("stream read failure")
	ErrSeekTooLarge           = errors.New("seek position out of range")
	ErrInvalidMagic           = errors.New("not an XTC or XTCH file")
	ErrInvalidVersion         = errors.New("unsupported container version")
	ErrCorruptedHeader        = errors.New("corrupted container header")
	ErrPageOutOfRange         = errors.New("page index out of range")
	ErrInvalidPageMagic       = errors.New("invalid page magic")
	ErrUnsupportedCompression = errors.New("compressed pages are not supported")
	ErrUnsupportedColorMode   = errors.New("unsupported color mode")
	ErrBufferTooSmall         = errors.New("buffer too small for page payload")
	ErrTooLarge               = errors.New("page dimensions overflow")
)
