// Page loading and streaming.
//
// Each page blob starts with a 22-byte header followed by the raw bitmap
// payload. The header's data_size field is advisory only; the payload size
// is always recomputed from the page dimensions and the container bit depth,
// with 64-bit intermediates so oversized dimensions fail cleanly instead of
// wrapping. Pages can be loaded whole into a caller buffer or streamed
// through a scratch buffer in chunks.
package xtc

import (
	"encoding/binary"
	"math"
)

// PageHeaderSize is the on-disk size of the per-page header.
const PageHeaderSize = 22

// PageHeader is the parsed 22-byte header at the start of each page blob.
type PageHeader struct {
	Magic       uint32
	Width       uint16
	Height      uint16
	ColorMode   uint8
	Compression uint8
	DataSize    uint32 // advisory; not used for bounds
	MD5         uint64 // first 8 bytes of the payload's MD5
}

func parsePageHeader(buf []byte) PageHeader {
	return PageHeader{
		Magic:       binary.LittleEndian.Uint32(buf[0:]),
		Width:       binary.LittleEndian.Uint16(buf[4:]),
		Height:      binary.LittleEndian.Uint16(buf[6:]),
		ColorMode:   buf[8],
		Compression: buf[9],
		DataSize:    binary.LittleEndian.Uint32(buf[10:]),
		MD5:         binary.LittleEndian.Uint64(buf[14:]),
	}
}

// PayloadSize returns the byte size of a page payload for the given
// dimensions and bit depth. 1-bit XTG pages are stored with byte-aligned
// rows; 2-bit XTH pages are two tightly-packed planes of w*h bits each.
// Fails ErrTooLarge when the result does not fit the native int.
func PayloadSize(width, height uint16, bitDepth int) (int, error) {
	w, h := uint64(width), uint64(height)
	var size uint64
	if bitDepth == 2 {
		size = 2 * ((w*h + 7) / 8)
	} else {
		size = (w + 7) / 8 * h
	}
	if size > math.MaxInt {
		return 0, ErrTooLarge
	}
	return int(size), nil
}

// pageRead is the result of validating a page header: the table entry, the
// parsed header, and the recomputed payload size. The stream is left
// positioned at the first payload byte.
type pageRead struct {
	entry   PageEntry
	hdr     PageHeader
	payload int
}

func (r *Reader) preparePageRead(i int) (pageRead, error) {
	entry, err := r.PageEntry(i)
	if err != nil {
		return pageRead{}, err
	}

	var buf [PageHeaderSize]byte
	if err := readFullAt(r.s, entry.DataOffset, buf[:]); err != nil {
		return pageRead{}, err
	}
	hdr := parsePageHeader(buf[:])

	want := uint32(MagicXTG)
	if r.bitDepth == 2 {
		want = MagicXTH
	}
	if hdr.Magic != want {
		return pageRead{}, ErrInvalidPageMagic
	}
	if hdr.ColorMode != 0 {
		return pageRead{}, ErrUnsupportedColorMode
	}
	if hdr.Compression != 0 {
		return pageRead{}, ErrUnsupportedCompression
	}

	payload, err := PayloadSize(hdr.Width, hdr.Height, r.bitDepth)
	if err != nil {
		return pageRead{}, err
	}
	return pageRead{entry: entry, hdr: hdr, payload: payload}, nil
}

// PageHeader reads and validates the per-page header for page i.
func (r *Reader) PageHeader(i int) (PageHeader, error) {
	pr, err := r.preparePageRead(i)
	if err != nil {
		return PageHeader{}, err
	}
	return pr.hdr, nil
}

// LoadPage reads the whole payload of page i into buf and returns the
// payload size. Fails ErrBufferTooSmall when buf cannot hold it.
func (r *Reader) LoadPage(i int, buf []byte) (int, error) {
	pr, err := r.preparePageRead(i)
	if err != nil {
		return 0, err
	}
	if len(buf) < pr.payload {
		return 0, ErrBufferTooSmall
	}
	if err := readFull(r.s, buf[:pr.payload]); err != nil {
		return 0, err
	}
	return pr.payload, nil
}

// LoadPageBlob reads the whole page blob, the 22-byte header plus the
// payload, into buf and returns the blob size. The blob is exactly what
// the display's XTH draw primitive consumes.
func (r *Reader) LoadPageBlob(i int, buf []byte) (int, error) {
	pr, err := r.preparePageRead(i)
	if err != nil {
		return 0, err
	}
	total := PageHeaderSize + pr.payload
	if len(buf) < total {
		return 0, ErrBufferTooSmall
	}
	if err := readFullAt(r.s, pr.entry.DataOffset, buf[:total]); err != nil {
		return 0, err
	}
	return total, nil
}

// StreamPage delivers the payload of page i in chunks of up to len(scratch)
// bytes. fn receives each chunk and the payload offset at which it starts;
// offsets advance monotonically from 0 to the payload size. A non-nil error
// from fn aborts the stream and is returned verbatim. scratch must be
// non-empty.
func (r *Reader) StreamPage(i int, scratch []byte, fn func(chunk []byte, off int) error) error {
	if len(scratch) == 0 {
		return ErrBufferTooSmall
	}
	pr, err := r.preparePageRead(i)
	if err != nil {
		return err
	}

	off := 0
	for off < pr.payload {
		n := min(len(scratch), pr.payload-off)
		if err := readFull(r.s, scratch[:n]); err != nil {
			return err
		}
		if err := fn(scratch[:n], off); err != nil {
			return err
		}
		off += n
	}
	return nil
}
