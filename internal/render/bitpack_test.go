package render

import (
	"bytes"
	"math/rand"
	"testing"
)

// refCrop is the naive per-bit reference implementation CropRow must
// match: extract width bits from xStart, white-initialised output.
func refCrop(src []byte, xStart, width int) []byte {
	out := make([]byte, (width+7)/8)
	for i := range out {
		out[i] = 0xFF
	}
	for i := 0; i < width; i++ {
		sb := xStart + i
		if src[sb/8]&(0x80>>(sb%8)) == 0 {
			out[i/8] &^= 0x80 >> (i % 8)
		}
	}
	return out
}

// Every (offset, width) combination over a random source row must match
// the per-bit reference; this sweeps both the aligned byte-copy fast
// path and the bitwise slow path.
func TestCropRowMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := make([]byte, 16)
	rng.Read(src)
	total := len(src) * 8

	for xStart := 0; xStart <= total; xStart++ {
		for width := 0; width <= total-xStart; width++ {
			want := refCrop(src, xStart, width)
			got := make([]byte, len(want))
			CropRow(got, src, xStart, width)
			if !bytes.Equal(got, want) {
				t.Fatalf("CropRow(x=%d, w=%d) = %08b, want %08b", xStart, width, got, want)
			}
		}
	}
}

// Padding bits in the last output byte are white even when the source
// bits past the crop are black.
func TestCropRowPaddingWhite(t *testing.T) {
	src := []byte{0x00, 0x00} // all black
	out := make([]byte, 1)
	CropRow(out, src, 2, 5)

	if out[0] != 0x07 { // 5 cleared bits, 3 white padding bits
		t.Errorf("out = %08b, want 00000111", out[0])
	}
}

func TestCropRowPanicsOutOfRange(t *testing.T) {
	tests := []struct {
		name          string
		dst, src      int // buffer sizes in bytes
		xStart, width int
	}{
		{"dst too small", 1, 4, 0, 9},
		{"src too short", 2, 1, 4, 8},
		{"negative start", 2, 4, -1, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			CropRow(make([]byte, tt.dst), make([]byte, tt.src), tt.xStart, tt.width)
		})
	}
}

func TestBlitClearBlack(t *testing.T) {
	dst := []byte{0xFF, 0xFF}
	src := []byte{0x55} // 01010101

	BlitClearBlack(dst, 3, src, 8)

	// Source zeros at bits 0,2,4,6 land at dst bits 3,5,7,9.
	want := []byte{0xFF &^ 0x15, 0xFF &^ 0x40}
	if !bytes.Equal(dst, want) {
		t.Errorf("dst = %08b, want %08b", dst, want)
	}
}

// Blitting only clears: white source bits never overwrite black already
// in the destination.
func TestBlitClearBlackOnlyClears(t *testing.T) {
	dst := []byte{0x00}
	BlitClearBlack(dst, 0, []byte{0xFF}, 8)

	if dst[0] != 0x00 {
		t.Errorf("dst = %08b, want all black preserved", dst[0])
	}
}

func TestBlitClearBlackPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	BlitClearBlack(make([]byte, 1), 4, []byte{0x00}, 8)
}
