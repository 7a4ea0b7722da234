// Test container builder.
//
// Tests never rely on fixture files: every case synthesises a container in
// memory with exactly the sections it needs, then opens it over a
// bytes.Reader. Corruption tests take the valid bytes this builder produces
// and surgically damage specific offsets before parsing.
package xtc

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type testPage struct {
	w, h    uint16
	payload []byte
	magic   uint32 // 0 = derive from container magic
	color   uint8
	comp    uint8
}

type testChapter struct {
	name  string
	start uint16 // 1-based, as on disk
	end   uint16
}

type testContainer struct {
	magic        uint32 // 0 = MagicXTC
	verMajor     uint8
	verMinor     uint8
	title        string
	author       string
	chapters     []testChapter
	chaptersLast bool // place the chapter list after the page data (no following section)
	pages        []testPage
}

// pagePayload returns a payload of the exact computed size for a page,
// filled with a recognisable pattern.
func pagePayload(w, h uint16, bitDepth int) []byte {
	n, _ := PayloadSize(w, h, bitDepth)
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

// build lays the container out as header | metadata | chapters | page table
// | page blobs (chapters moved last with chaptersLast) and returns the raw
// bytes.
func (c testContainer) build(t *testing.T) []byte {
	t.Helper()

	magic := c.magic
	if magic == 0 {
		magic = MagicXTC
	}
	depth := 1
	pageMagic := uint32(MagicXTG)
	if magic == MagicXTCH {
		depth = 2
		pageMagic = MagicXTH
	}
	verMajor, verMinor := c.verMajor, c.verMinor
	if verMajor == 0 && verMinor == 0 {
		verMajor = 1
	}

	hasMeta := c.title != "" || c.author != ""
	off := uint64(HeaderSize)
	var metaOff uint64
	if hasMeta {
		metaOff = titleOff
		off = authorOff + AuthorSize
	}

	var chapterOff uint64
	chapterBytes := uint64(len(c.chapters)) * ChapterRecordSize
	if len(c.chapters) > 0 && !c.chaptersLast {
		chapterOff = off
		off += chapterBytes
	}

	tableOff := off
	off += uint64(len(c.pages)) * PageEntrySize
	dataOff := off

	blobs := new(bytes.Buffer)
	table := new(bytes.Buffer)
	for _, p := range c.pages {
		payload := p.payload
		if payload == nil {
			payload = pagePayload(p.w, p.h, depth)
		}
		var entry [PageEntrySize]byte
		binary.LittleEndian.PutUint64(entry[0:], off)
		binary.LittleEndian.PutUint32(entry[8:], uint32(len(payload)))
		binary.LittleEndian.PutUint16(entry[12:], p.w)
		binary.LittleEndian.PutUint16(entry[14:], p.h)
		table.Write(entry[:])

		pm := p.magic
		if pm == 0 {
			pm = pageMagic
		}
		var ph [PageHeaderSize]byte
		binary.LittleEndian.PutUint32(ph[0:], pm)
		binary.LittleEndian.PutUint16(ph[4:], p.w)
		binary.LittleEndian.PutUint16(ph[6:], p.h)
		ph[8] = p.color
		ph[9] = p.comp
		binary.LittleEndian.PutUint32(ph[10:], uint32(len(payload)))
		blobs.Write(ph[:])
		blobs.Write(payload)
		off += PageHeaderSize + uint64(len(payload))
	}

	if len(c.chapters) > 0 && c.chaptersLast {
		chapterOff = off
	}

	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], magic)
	hdr[4] = verMajor
	hdr[5] = verMinor
	binary.LittleEndian.PutUint16(hdr[6:], uint16(len(c.pages)))
	if hasMeta {
		hdr[9] = 1
	}
	if len(c.chapters) > 0 {
		hdr[11] = 1
	}
	binary.LittleEndian.PutUint64(hdr[16:], metaOff)
	binary.LittleEndian.PutUint64(hdr[24:], tableOff)
	binary.LittleEndian.PutUint64(hdr[32:], dataOff)
	binary.LittleEndian.PutUint32(hdr[48:], uint32(chapterOff))

	out := new(bytes.Buffer)
	out.Write(hdr[:])
	if hasMeta {
		var title [TitleSize]byte
		var author [AuthorSize]byte
		copy(title[:], c.title)
		copy(author[:], c.author)
		out.Write(title[:])
		out.Write(author[:])
	}
	if len(c.chapters) > 0 && !c.chaptersLast {
		writeChapters(out, c.chapters)
	}
	out.Write(table.Bytes())
	out.Write(blobs.Bytes())
	if len(c.chapters) > 0 && c.chaptersLast {
		writeChapters(out, c.chapters)
	}
	return out.Bytes()
}

func writeChapters(out *bytes.Buffer, chapters []testChapter) {
	for _, ch := range chapters {
		var rec [ChapterRecordSize]byte
		copy(rec[:chapterNameSize], ch.name)
		binary.LittleEndian.PutUint16(rec[0x50:], ch.start)
		binary.LittleEndian.PutUint16(rec[0x52:], ch.end)
		out.Write(rec[:])
	}
}

// openContainer opens raw container bytes through the reader.
func openContainer(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := Open(NewIOStream(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}
