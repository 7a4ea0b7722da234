// The page render pipeline.
//
// Memory is the constraint: the device has well under a megabyte to play
// with and pages may be larger than the panel. XTH pages are read whole
// (the display primitive wants the blob) into a grow-on-demand scratch
// that is retained between pages, since pages of one book share a size.
// XTG pages that need cropping are never held whole: they stream through a
// 2 KiB chunk buffer, one row accumulating at a time, and only the visible
// rows land in the bitplane that goes to the panel.
package render

import (
	"github.com/jpl-au/xtc"
	"github.com/jpl-au/xtc/sdk"
)

// streamScratchSize is the chunk size for streaming XTG payloads.
const streamScratchSize = 2048

// PageState is the slice of application state the pipeline reads and
// writes: the current page index (clamped into range), the cached page
// count, and the flag marking a restored position that still needs
// clamping against a freshly-opened book.
type PageState struct {
	Page           int
	PageCount      int
	RestorePending bool
}

// Pipeline renders container pages to the display.
type Pipeline struct {
	disp    sdk.Display
	scratch []byte // grow-on-demand, never shrunk
}

func NewPipeline(d sdk.Display) *Pipeline {
	return &Pipeline{disp: d}
}

// grow returns a scratch slice of exactly n bytes, reallocating only when
// the retained buffer is too small.
func (p *Pipeline) grow(n int) []byte {
	if cap(p.scratch) < n {
		p.scratch = make([]byte, n)
	}
	return p.scratch[:n]
}

// RenderPage opens the container on s, clamps st.Page into range, and
// draws that page. The display is not presented; the caller decides when
// to Update.
func (p *Pipeline) RenderPage(s xtc.Stream, st *PageState) error {
	r, err := xtc.Open(s)
	if err != nil {
		return err
	}

	st.PageCount = r.PageCount()
	if st.Page >= st.PageCount {
		st.Page = st.PageCount - 1
	}
	if st.Page < 0 {
		st.Page = 0
	}
	st.RestorePending = false

	entry, err := r.PageEntry(st.Page)
	if err != nil {
		return err
	}
	hdr, err := r.PageHeader(st.Page)
	if err != nil {
		return err
	}
	if hdr.Width != entry.Width || hdr.Height != entry.Height {
		return ErrInvalidPageHeader
	}

	if r.BitDepth() == 2 {
		return p.renderXTH(r, st.Page, entry)
	}
	return p.renderXTG(r, st.Page, entry)
}

// renderXTH submits the whole page blob to the display's centred XTH
// primitive. The clear is elided when the page exactly covers the panel;
// the blob overwrites every pixel anyway and e-paper clears are slow.
func (p *Pipeline) renderXTH(r *xtc.Reader, page int, entry xtc.PageEntry) error {
	payload, err := xtc.PayloadSize(entry.Width, entry.Height, 2)
	if err != nil {
		return err
	}
	buf := p.grow(xtc.PageHeaderSize + payload)
	n, err := r.LoadPageBlob(page, buf)
	if err != nil {
		return err
	}

	sw, sh := p.disp.Size()
	if int(entry.Width) != sw || int(entry.Height) != sh {
		p.disp.FillScreen(sdk.White)
	}
	return p.disp.DrawXTH(buf[:n])
}

func (p *Pipeline) renderXTG(r *xtc.Reader, page int, entry xtc.PageEntry) error {
	w, h := int(entry.Width), int(entry.Height)
	sw, sh := p.disp.Size()

	fits := w <= sw && h <= sh
	if fits && w&7 == 0 {
		return p.pushXTGDirect(r, page, w, h, sw, sh)
	}
	return p.streamXTG(r, page, w, h, sw, sh)
}

// pushXTGDirect loads the byte-aligned bitmap as stored and pushes it in
// one call, no cropping and no per-row work.
func (p *Pipeline) pushXTGDirect(r *xtc.Reader, page, w, h, sw, sh int) error {
	payload, err := xtc.PayloadSize(uint16(w), uint16(h), 1)
	if err != nil {
		return err
	}
	buf := p.grow(payload)
	n, err := r.LoadPage(page, buf)
	if err != nil {
		return err
	}

	p.disp.FillScreen(sdk.White)
	p.disp.PushImage1bpp((sw-w)/2, (sh-h)/2, w, h, buf[:n], [2]sdk.Color{sdk.Black, sdk.White})
	return nil
}

// streamXTG streams the payload row by row, cropping the visible window
// into a byte-aligned main bitplane plus an 8-pixel tail strip for the
// fractional right-hand bits. The split keeps both pushed images tightly
// packed whatever the source width.
func (p *Pipeline) streamXTG(r *xtc.Reader, page, w, h, sw, sh int) error {
	rowBytes := (w + 7) / 8
	x0, y0 := (sw-w)/2, (sh-h)/2

	xvs, xve := max(0, -x0), min(w, sw-x0)
	yvs, yve := max(0, -y0), min(h, sh-y0)
	visW, visH := xve-xvs, yve-yvs
	if visW <= 0 || visH <= 0 {
		p.disp.FillScreen(sdk.White)
		return nil
	}

	mainW := visW &^ 7
	tailW := visW - mainW
	mainRow := mainW / 8

	// One allocation: main bitplane rows, then one tail byte per row.
	buf := p.grow(mainRow*visH + visH)
	for i := range buf {
		buf[i] = 0xFF
	}
	main := buf[:mainRow*visH]
	tail := buf[mainRow*visH:]

	row := make([]byte, rowBytes)
	var scratch [streamScratchSize]byte
	fill, y := 0, 0

	emit := func() {
		vy := y - yvs
		if mainW > 0 {
			dst := main[vy*mainRow : (vy+1)*mainRow]
			if xvs&7 == 0 {
				copy(dst, row[xvs>>3:xvs>>3+mainRow])
			} else {
				CropRow(dst, row, xvs, mainW)
			}
		}
		if tailW > 0 {
			b := byte(0xFF)
			base := xvs + mainW
			for i := 0; i < tailW; i++ {
				if row[(base+i)>>3]&(0x80>>((base+i)&7)) == 0 {
					b &^= 0x80 >> i
				}
			}
			tail[vy] = b
		}
	}

	err := r.StreamPage(page, scratch[:], func(chunk []byte, _ int) error {
		for len(chunk) > 0 {
			n := min(len(chunk), rowBytes-fill)
			copy(row[fill:], chunk[:n])
			fill += n
			chunk = chunk[n:]
			if fill == rowBytes {
				if y >= yvs && y < yve {
					emit()
				}
				y++
				fill = 0
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if y != h || fill != 0 {
		return ErrInvalidPageHeader
	}

	pal := [2]sdk.Color{sdk.Black, sdk.White}
	p.disp.FillScreen(sdk.White)
	if mainW > 0 {
		p.disp.PushImage1bpp(x0+xvs, y0+yvs, mainW, visH, main, pal)
	}
	if tailW > 0 {
		p.disp.PushImage1bpp(x0+xvs+mainW, y0+yvs, 8, visH, tail, pal)
	}
	return nil
}
