// 1-bpp bit manipulation primitives.
//
// The panel takes MSB-first packed rows with 0 = black and 1 = white, and
// rows must be tightly packed, no end-of-row padding bits. Both primitives
// here only ever clear bits: the caller pre-initialises the destination to
// white and the source's black pixels punch through. Padding bits in a
// partial final byte therefore stay white, which is what the letterbox
// background needs.
package render

// CropRow copies width bits starting at bit xStart from an MSB-first
// packed source row into dst, MSB-first packed from bit 0. dst must hold
// at least ceil(width/8) bytes; violating the preconditions is a
// programming error.
func CropRow(dst, src []byte, xStart, width int) {
	outBytes := (width + 7) / 8
	if xStart < 0 || width < 0 || len(dst) < outBytes || (xStart+width+7)/8 > len(src) {
		panic("render: CropRow out of range")
	}

	for i := 0; i < outBytes; i++ {
		dst[i] = 0xFF
	}

	if xStart&7 == 0 {
		// Byte-aligned: whole bytes copy straight across, and the
		// partial final byte keeps its low padding bits white.
		copy(dst[:width>>3], src[xStart>>3:])
		if rem := width & 7; rem != 0 {
			dst[width>>3] = src[xStart>>3+width>>3] | 0xFF>>rem
		}
		return
	}

	for i := 0; i < width; i++ {
		sb := xStart + i
		if src[sb>>3]&(0x80>>(sb&7)) == 0 {
			dst[i>>3] &^= 0x80 >> (i & 7)
		}
	}
}

// BlitClearBlack clears the bits of dst, starting at dstBitOff, that are 0
// in the first widthBits of src. dst must be pre-initialised to white by
// the caller.
func BlitClearBlack(dst []byte, dstBitOff int, src []byte, widthBits int) {
	if dstBitOff < 0 || widthBits < 0 ||
		(dstBitOff+widthBits+7)/8 > len(dst) || (widthBits+7)/8 > len(src) {
		panic("render: BlitClearBlack out of range")
	}

	for i := 0; i < widthBits; i++ {
		if src[i>>3]&(0x80>>(i&7)) == 0 {
			db := dstBitOff + i
			dst[db>>3] &^= 0x80 >> (db & 7)
		}
	}
}
