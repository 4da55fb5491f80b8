package led

import (
	"math"
	"math/rand"
)

// Color is one pixel's color packed as 0x00RRGGBB. The packed layout is
// shared by the pixel buffer, the WS281x driver and the serial wire format.
type Color uint32

// RGB packs three 8-bit channels into a Color.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Channels returns the three 8-bit channels of c.
func (c Color) Channels() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Palette colors used by the built-in patterns.
const (
	Black        Color = 0x000000
	White        Color = 0xFFFFFF
	Red          Color = 0xFF0000
	Green        Color = 0x00FF00
	AutumnOrange Color = 0xDC6601
	BrightViolet Color = 0x8A2BE2
	FallYellow   Color = 0xF0C420
)

// Interpolate linearly mixes start toward end, per channel. t is clamped to
// [0, 1]: 0 yields start, 1 yields end.
func Interpolate(start, end Color, t float64) Color {
	if t <= 0 {
		return start
	}
	if t >= 1 {
		return end
	}

	sr, sg, sb := start.Channels()
	er, eg, eb := end.Channels()
	return RGB(lerp(sr, er, t), lerp(sg, eg, t), lerp(sb, eb, t))
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Random returns a uniformly random color.
func Random() Color {
	return Color(rand.Uint32() & 0xFFFFFF)
}

// Frame is a drawable strip of pixel colors.
type Frame []Color

// NewFrame creates a frame of n pixels, all black.
func NewFrame(n int) Frame {
	return make(Frame, n)
}

// Fill sets every pixel of the frame to c.
func (f Frame) Fill(c Color) {
	for i := range f {
		f[i] = c
	}
}

// Bytes returns the frame as packed RGB bytes, three per pixel, for wire
// transports.
func (f Frame) Bytes() []byte {
	b := make([]byte, 0, 3*len(f))
	for _, c := range f {
		r, g, bl := c.Channels()
		b = append(b, r, g, bl)
	}
	return b
}
