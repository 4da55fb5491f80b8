package beatglow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"libdb.so/beatglow/internal/led"
)

func TestPixelBuffer(t *testing.T) {
	buf := NewPixelBuffer(10)
	assert.Equal(t, 10, buf.Len())

	for i := 0; i < buf.Len(); i++ {
		assert.Equal(t, led.Black, buf.At(i))
	}

	buf.Set(3, led.Red)
	assert.Equal(t, led.Red, buf.At(3))
	assert.Equal(t, led.Black, buf.At(2))
	assert.Equal(t, led.Black, buf.At(4))
}

func TestPixelBufferFill(t *testing.T) {
	buf := NewPixelBuffer(5)
	buf.Fill(led.Green)
	for i := 0; i < buf.Len(); i++ {
		assert.Equal(t, led.Green, buf.At(i))
	}
}

func TestPixelBufferSnapshot(t *testing.T) {
	buf := NewPixelBuffer(4)
	buf.Set(0, led.Red)
	buf.Set(2, led.White)

	dst := led.NewFrame(4)
	n := buf.Snapshot(dst)
	assert.Equal(t, 4, n)
	assert.Equal(t, led.Frame{led.Red, led.Black, led.White, led.Black}, dst)

	short := led.NewFrame(2)
	assert.Equal(t, 2, buf.Snapshot(short))
	assert.Equal(t, led.Frame{led.Red, led.Black}, short)
}

func TestPixelBufferOutOfRangePanics(t *testing.T) {
	buf := NewPixelBuffer(3)
	assert.Panics(t, func() { buf.Set(3, led.Red) })
	assert.Panics(t, func() { buf.At(-1) })
}
