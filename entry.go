// Page-table entries.
//
// The page table is an array of 16-byte records at PageTableOff, one per
// page. It is never loaded whole: each lookup seeks to the entry's slot and
// reads exactly 16 bytes, keeping memory flat regardless of page count.
package xtc

import "encoding/binary"

// PageEntrySize is the on-disk size of one page-table entry.
const PageEntrySize = 16

// PageEntry locates and sizes one page blob.
type PageEntry struct {
	DataOffset uint64
	DataSize   uint32
	Width      uint16
	Height     uint16
}

// PageEntry reads the page-table entry for page i.
func (r *Reader) PageEntry(i int) (PageEntry, error) {
	if i < 0 || i >= int(r.hdr.PageCount) {
		return PageEntry{}, ErrPageOutOfRange
	}

	var buf [PageEntrySize]byte
	off := r.hdr.PageTableOff + uint64(i)*PageEntrySize
	if err := readFullAt(r.s, off, buf[:]); err != nil {
		return PageEntry{}, err
	}

	return PageEntry{
		DataOffset: binary.LittleEndian.Uint64(buf[0:]),
		DataSize:   binary.LittleEndian.Uint32(buf[8:]),
		Width:      binary.LittleEndian.Uint16(buf[12:]),
		Height:     binary.LittleEndian.Uint16(buf[14:]),
	}, nil
}
