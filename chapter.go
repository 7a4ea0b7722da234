// Chapter list iteration.
//
// Chapters are fixed 96-byte records starting at ChapterOff: an 80-byte
// NUL-padded name, then 1-based start and end page numbers at record
// offsets 0x50 and 0x52. The format records no chapter-area length, so the
// end of the list is derived as the smallest section offset past the
// chapter start; when none qualifies, iteration runs to end of stream. An
// all-zero record also terminates the list.
package xtc

import "encoding/binary"

// ChapterRecordSize is the on-disk size of one chapter record.
const ChapterRecordSize = 96

const chapterNameSize = 80

// ForEachChapter iterates the chapter list, invoking fn with the chapter
// name and 0-based inclusive page range. The name slice is only valid for
// the duration of the call. Records whose start page is outside the
// container, or whose range is empty after clamping, are skipped. A non-nil
// error from fn aborts iteration and is returned verbatim. Containers
// without chapters iterate zero times.
func (r *Reader) ForEachChapter(fn func(name []byte, start, end int) error) error {
	if !r.hdr.HasChapters || r.hdr.ChapterOff == 0 {
		return nil
	}

	start := uint64(r.hdr.ChapterOff)
	limit := r.chapterAreaEnd(start)
	if err := r.s.Seek(start); err != nil {
		return err
	}

	var rec [ChapterRecordSize]byte
	pageCount := int(r.hdr.PageCount)
	for pos := start; ; pos += ChapterRecordSize {
		if limit != 0 && pos+ChapterRecordSize > limit {
			return nil
		}
		// A short read at a record boundary means the list runs to the
		// end of the file.
		if err := readFull(r.s, rec[:]); err != nil {
			if err == ErrEndOfStream {
				return nil
			}
			return err
		}

		nameLen := nulIndex(rec[:chapterNameSize])
		first := binary.LittleEndian.Uint16(rec[0x50:])
		last := binary.LittleEndian.Uint16(rec[0x52:])
		if nameLen == 0 && first == 0 && last == 0 {
			return nil
		}

		s0 := int(first) - 1
		e0 := int(last) - 1
		if e0 > pageCount-1 {
			e0 = pageCount - 1
		}
		if s0 < 0 || s0 >= pageCount || s0 > e0 {
			continue
		}
		if err := fn(rec[:nameLen], s0, e0); err != nil {
			return err
		}
	}
}

// chapterAreaEnd returns the smallest non-zero section offset strictly
// greater than start, or 0 when no section follows the chapter list.
func (r *Reader) chapterAreaEnd(start uint64) uint64 {
	end := uint64(0)
	for _, off := range [...]uint64{r.hdr.PageTableOff, r.hdr.DataOff, r.hdr.ThumbOff} {
		if off > start && (end == 0 || off < end) {
			end = off
		}
	}
	return end
}
