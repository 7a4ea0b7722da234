package xtc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func onePage() testContainer {
	return testContainer{pages: []testPage{{w: 8, h: 1, payload: []byte{0xAA}}}}
}

func TestOpenMinimal(t *testing.T) {
	r := openContainer(t, onePage().build(t))

	if r.BitDepth() != 1 {
		t.Errorf("BitDepth = %d, want 1", r.BitDepth())
	}
	if r.PageCount() != 1 {
		t.Errorf("PageCount = %d, want 1", r.PageCount())
	}
	if r.Header().Magic != MagicXTC {
		t.Errorf("Magic = %#x, want %#x", r.Header().Magic, MagicXTC)
	}
}

func TestOpenGrayscale(t *testing.T) {
	c := testContainer{magic: MagicXTCH, pages: []testPage{{w: 2, h: 2}}}
	r := openContainer(t, c.build(t))

	if r.BitDepth() != 2 {
		t.Errorf("BitDepth = %d, want 2", r.BitDepth())
	}
}

func TestOpenInvalidMagic(t *testing.T) {
	data := onePage().build(t)
	binary.LittleEndian.PutUint32(data[0:], 0x12345678)

	_, err := Open(NewIOStream(bytes.NewReader(data)))
	if !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("got %v, want ErrInvalidMagic", err)
	}
}

// The current encoder writes (1,0). (0,1) is accepted because a historical
// encoder swapped the two bytes; everything else is rejected.
func TestVersionTolerance(t *testing.T) {
	tests := []struct {
		major, minor uint8
		ok           bool
	}{
		{1, 0, true},
		{0, 1, true},
		{1, 1, false},
		{2, 0, false},
		{0, 2, false},
		{255, 255, false},
	}

	for _, tt := range tests {
		data := onePage().build(t)
		data[4] = tt.major
		data[5] = tt.minor

		_, err := Open(NewIOStream(bytes.NewReader(data)))
		if tt.ok && err != nil {
			t.Errorf("version (%d,%d): unexpected error %v", tt.major, tt.minor, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("version (%d,%d): got %v, want ErrInvalidVersion", tt.major, tt.minor, err)
		}
	}
}

// A (0,0) version must not be mistaken for a zeroed header that happens to
// parse; it is rejected before the page-count check runs.
func TestVersionZeroZero(t *testing.T) {
	data := onePage().build(t)
	data[4] = 0
	data[5] = 0

	_, err := Open(NewIOStream(bytes.NewReader(data)))
	if !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("got %v, want ErrInvalidVersion", err)
	}
}

func TestOpenZeroPages(t *testing.T) {
	data := onePage().build(t)
	binary.LittleEndian.PutUint16(data[6:], 0)

	_, err := Open(NewIOStream(bytes.NewReader(data)))
	if !errors.Is(err, ErrCorruptedHeader) {
		t.Errorf("got %v, want ErrCorruptedHeader", err)
	}
}

func TestOpenZeroPageTable(t *testing.T) {
	data := onePage().build(t)
	binary.LittleEndian.PutUint64(data[24:], 0)

	_, err := Open(NewIOStream(bytes.NewReader(data)))
	if !errors.Is(err, ErrCorruptedHeader) {
		t.Errorf("got %v, want ErrCorruptedHeader", err)
	}
}

func TestOpenShortFile(t *testing.T) {
	data := onePage().build(t)

	_, err := Open(NewIOStream(bytes.NewReader(data[:10])))
	if !errors.Is(err, ErrEndOfStream) {
		t.Errorf("got %v, want ErrEndOfStream", err)
	}
}

func TestHeaderOffsetsParsed(t *testing.T) {
	c := testContainer{
		title:    "T",
		author:   "A",
		chapters: []testChapter{{name: "One", start: 1, end: 1}},
		pages:    []testPage{{w: 8, h: 1, payload: []byte{0x00}}},
	}
	r := openContainer(t, c.build(t))

	hdr := r.Header()
	if !hdr.HasMetadata || !hdr.HasChapters {
		t.Fatalf("flags = meta:%v chapters:%v, want both set", hdr.HasMetadata, hdr.HasChapters)
	}
	if hdr.MetadataOff != titleOff {
		t.Errorf("MetadataOff = %#x, want %#x", hdr.MetadataOff, titleOff)
	}
	if hdr.ChapterOff == 0 || hdr.PageTableOff == 0 || hdr.DataOff == 0 {
		t.Errorf("section offsets not populated: %+v", hdr)
	}
	if uint64(hdr.ChapterOff) >= hdr.PageTableOff || hdr.PageTableOff >= hdr.DataOff {
		t.Errorf("sections out of order: %+v", hdr)
	}
}
