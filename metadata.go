// Book metadata: fixed-length title and author slots.
//
// When the header's metadata flag is set, a 128-byte title lives at file
// offset 0x38 (immediately after the header) and a 64-byte author at 0xB8.
// Both are NUL-padded. Nothing is allocated: the caller provides the
// Metadata value and the effective strings are views into its arrays.
package xtc

// Metadata slot sizes on disk.
const (
	TitleSize  = 128
	AuthorSize = 64

	titleOff  = 0x38
	authorOff = 0xB8
)

// Metadata holds the title and author slots plus their effective lengths
// (index of the first NUL, or the full slot when none).
type Metadata struct {
	TitleBuf  [TitleSize]byte
	TitleLen  int
	AuthorBuf [AuthorSize]byte
	AuthorLen int
}

// Title returns the effective title bytes.
func (m *Metadata) Title() []byte { return m.TitleBuf[:m.TitleLen] }

// Author returns the effective author bytes.
func (m *Metadata) Author() []byte { return m.AuthorBuf[:m.AuthorLen] }

// ReadMetadata fills out from the metadata section. If the container has no
// metadata, out is zeroed and the call succeeds.
func (r *Reader) ReadMetadata(out *Metadata) error {
	*out = Metadata{}
	if !r.hdr.HasMetadata {
		return nil
	}
	if err := readFullAt(r.s, titleOff, out.TitleBuf[:]); err != nil {
		return err
	}
	if err := readFull(r.s, out.AuthorBuf[:]); err != nil {
		return err
	}
	out.TitleLen = nulIndex(out.TitleBuf[:])
	out.AuthorLen = nulIndex(out.AuthorBuf[:])
	return nil
}

// nulIndex returns the index of the first NUL in b, or len(b).
func nulIndex(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return len(b)
}
