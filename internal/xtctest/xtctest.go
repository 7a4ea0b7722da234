// Package xtctest builds synthetic containers for tests outside the root
// package. The layout mirrors what the encoder produces: header, metadata,
// chapter list, page table, page blobs.
package xtctest

import (
	"bytes"
	"encoding/binary"

	"github.com/jpl-au/xtc"
)

// Page is one page of a test book. A nil Payload is filled with a pattern
// of the exact computed size.
type Page struct {
	W, H    uint16
	Payload []byte
}

// Chapter is one chapter record with 1-based page numbers, as on disk.
type Chapter struct {
	Name       string
	Start, End uint16
}

// Book describes a test container.
type Book struct {
	Magic    uint32 // 0 = xtc.MagicXTC
	Title    string
	Author   string
	Pages    []Page
	Chapters []Chapter
}

// Bytes lays the book out and returns the container bytes.
func (b Book) Bytes() []byte {
	magic := b.Magic
	if magic == 0 {
		magic = xtc.MagicXTC
	}
	depth := 1
	pageMagic := uint32(xtc.MagicXTG)
	if magic == xtc.MagicXTCH {
		depth = 2
		pageMagic = xtc.MagicXTH
	}

	hasMeta := b.Title != "" || b.Author != ""
	off := uint64(xtc.HeaderSize)
	var metaOff uint64
	if hasMeta {
		metaOff = 0x38
		off = 0xB8 + xtc.AuthorSize
	}

	var chapterOff uint64
	if len(b.Chapters) > 0 {
		chapterOff = off
		off += uint64(len(b.Chapters)) * xtc.ChapterRecordSize
	}

	tableOff := off
	off += uint64(len(b.Pages)) * xtc.PageEntrySize
	dataOff := off

	table := new(bytes.Buffer)
	blobs := new(bytes.Buffer)
	for _, p := range b.Pages {
		payload := p.Payload
		if payload == nil {
			n, _ := xtc.PayloadSize(p.W, p.H, depth)
			payload = make([]byte, n)
			for i := range payload {
				payload[i] = byte(i)
			}
		}
		var entry [xtc.PageEntrySize]byte
		binary.LittleEndian.PutUint64(entry[0:], off)
		binary.LittleEndian.PutUint32(entry[8:], uint32(len(payload)))
		binary.LittleEndian.PutUint16(entry[12:], p.W)
		binary.LittleEndian.PutUint16(entry[14:], p.H)
		table.Write(entry[:])

		var ph [xtc.PageHeaderSize]byte
		binary.LittleEndian.PutUint32(ph[0:], pageMagic)
		binary.LittleEndian.PutUint16(ph[4:], p.W)
		binary.LittleEndian.PutUint16(ph[6:], p.H)
		binary.LittleEndian.PutUint32(ph[10:], uint32(len(payload)))
		blobs.Write(ph[:])
		blobs.Write(payload)
		off += xtc.PageHeaderSize + uint64(len(payload))
	}

	var hdr [xtc.HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], magic)
	hdr[4] = 1
	binary.LittleEndian.PutUint16(hdr[6:], uint16(len(b.Pages)))
	if hasMeta {
		hdr[9] = 1
	}
	if len(b.Chapters) > 0 {
		hdr[11] = 1
	}
	binary.LittleEndian.PutUint64(hdr[16:], metaOff)
	binary.LittleEndian.PutUint64(hdr[24:], tableOff)
	binary.LittleEndian.PutUint64(hdr[32:], dataOff)
	binary.LittleEndian.PutUint32(hdr[48:], uint32(chapterOff))

	out := new(bytes.Buffer)
	out.Write(hdr[:])
	if hasMeta {
		var title [xtc.TitleSize]byte
		var author [xtc.AuthorSize]byte
		copy(title[:], b.Title)
		copy(author[:], b.Author)
		out.Write(title[:])
		out.Write(author[:])
	}
	for _, ch := range b.Chapters {
		var rec [xtc.ChapterRecordSize]byte
		copy(rec[:80], ch.Name)
		binary.LittleEndian.PutUint16(rec[0x50:], ch.Start)
		binary.LittleEndian.PutUint16(rec[0x52:], ch.End)
		out.Write(rec[:])
	}
	out.Write(table.Bytes())
	out.Write(blobs.Bytes())
	return out.Bytes()
}
