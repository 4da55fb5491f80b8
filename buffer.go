package beatglow

import (
	"sync/atomic"

	"libdb.so/beatglow/internal/led"
)

// PixelBuffer is the frame state shared between animation workers and the
// refresh worker. Slots hold packed colors with per-element atomic access;
// there is no atomicity across slots. Concurrent writers are expected to own
// disjoint index sets (see Controller.CreateGroupOfEveryNth); writes to the
// same slot are last-write-wins.
type PixelBuffer struct {
	pix []atomic.Uint32
}

// NewPixelBuffer creates a buffer of n pixels, all black.
func NewPixelBuffer(n int) *PixelBuffer {
	return &PixelBuffer{pix: make([]atomic.Uint32, n)}
}

// Len returns the number of pixels.
func (b *PixelBuffer) Len() int {
	return len(b.pix)
}

// Set writes the color at index i. An index outside [0, Len) is a programming
// error and panics.
func (b *PixelBuffer) Set(i int, c led.Color) {
	b.pix[i].Store(uint32(c))
}

// At reads the color at index i.
func (b *PixelBuffer) At(i int) led.Color {
	return led.Color(b.pix[i].Load())
}

// Fill sets every pixel to c.
func (b *PixelBuffer) Fill(c led.Color) {
	for i := range b.pix {
		b.pix[i].Store(uint32(c))
	}
}

// Snapshot copies the buffer into dst, up to the shorter of the two lengths,
// and returns the number of pixels copied.
func (b *PixelBuffer) Snapshot(dst led.Frame) int {
	n := len(b.pix)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = led.Color(b.pix[i].Load())
	}
	return n
}
