// Container header parsing.
//
// The header is exactly 56 bytes at the start of the file: magic, version,
// page count, feature flags, and the offsets of every other section. All
// multi-byte fields are little-endian. The header is read once at Open and
// cached; everything else in the file is located through it.
package xtc

import "encoding/binary"

// Container and page magics, little-endian on disk.
const (
	MagicXTC  = 0x00435458 // "XTC\0", 1-bit pages
	MagicXTCH = 0x48435458 // "XTCH", 2-bit grayscale pages
	MagicXTG  = 0x00475458 // "XTG\0", per-page magic in XTC
	MagicXTH  = 0x00485458 // "XTH\0", per-page magic in XTCH
)

// HeaderSize is the fixed size of the container header in bytes.
const HeaderSize = 56

// Header is the parsed 56-byte container header.
type Header struct {
	Magic         uint32
	VersionMajor  uint8
	VersionMinor  uint8
	PageCount     uint16
	ReadDirection uint8
	HasMetadata   bool
	HasThumbnails bool
	HasChapters   bool
	CurrentPage   uint32 // 1-based, as stored by the encoder
	MetadataOff   uint64
	PageTableOff  uint64
	DataOff       uint64
	ThumbOff      uint64
	ChapterOff    uint32
}

// Reader parses an XTC/XTCH container over a Stream. It caches only the
// header; pages, metadata, and chapters are read on demand. A Reader borrows
// its stream for the duration of one top-level operation and must not be
// shared across goroutines.
type Reader struct {
	s        Stream
	hdr      Header
	bitDepth int
}

// Open reads and validates the container header and returns a Reader
// positioned to serve page and chapter reads.
func Open(s Stream) (*Reader, error) {
	var buf [HeaderSize]byte
	if err := readFullAt(s, 0, buf[:]); err != nil {
		return nil, err
	}

	hdr := Header{
		Magic:         binary.LittleEndian.Uint32(buf[0:]),
		VersionMajor:  buf[4],
		VersionMinor:  buf[5],
		PageCount:     binary.LittleEndian.Uint16(buf[6:]),
		ReadDirection: buf[8],
		HasMetadata:   buf[9] != 0,
		HasThumbnails: buf[10] != 0,
		HasChapters:   buf[11] != 0,
		CurrentPage:   binary.LittleEndian.Uint32(buf[12:]),
		MetadataOff:   binary.LittleEndian.Uint64(buf[16:]),
		PageTableOff:  binary.LittleEndian.Uint64(buf[24:]),
		DataOff:       binary.LittleEndian.Uint64(buf[32:]),
		ThumbOff:      binary.LittleEndian.Uint64(buf[40:]),
		ChapterOff:    binary.LittleEndian.Uint32(buf[48:]),
	}

	var depth int
	switch hdr.Magic {
	case MagicXTC:
		depth = 1
	case MagicXTCH:
		depth = 2
	default:
		return nil, ErrInvalidMagic
	}

	// (1,0) is current. (0,1) is accepted for files produced by a
	// historical encoder that swapped the two bytes.
	v := [2]uint8{hdr.VersionMajor, hdr.VersionMinor}
	if v != [2]uint8{1, 0} && v != [2]uint8{0, 1} {
		return nil, ErrInvalidVersion
	}

	if hdr.PageCount == 0 || hdr.PageTableOff == 0 {
		return nil, ErrCorruptedHeader
	}

	return &Reader{s: s, hdr: hdr, bitDepth: depth}, nil
}

// Header returns the cached container header.
func (r *Reader) Header() Header { return r.hdr }

// PageCount returns the number of pages in the container.
func (r *Reader) PageCount() int { return int(r.hdr.PageCount) }

// BitDepth returns 1 for XTC containers and 2 for XTCH.
func (r *Reader) BitDepth() int { return r.bitDepth }
