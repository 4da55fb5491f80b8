package beatglow

import (
	"github.com/pkg/errors"
	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"

	"libdb.so/beatglow/internal/led"
)

// WS281xStrip drives a WS281x strip attached directly to a GPIO pin.
type WS281xStrip struct {
	dev *ws2811.WS2811
}

var _ Strip = (*WS281xStrip)(nil)

// OpenWS281xStrip initializes the WS281x device on the given GPIO pin.
func OpenWS281xStrip(gpioPin, brightness, numPixels int) (*WS281xStrip, error) {
	opt := ws2811.DefaultOptions
	opt.Channels[0].GpioPin = gpioPin
	opt.Channels[0].LedCount = numPixels
	if brightness > 0 {
		opt.Channels[0].Brightness = brightness
	}

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ws281x device")
	}
	if err := dev.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ws281x device")
	}

	return &WS281xStrip{dev: dev}, nil
}

// SetPixel stages the color of pixel i. The device's channel buffer shares
// the packed 0x00RRGGBB layout with led.Color.
func (s *WS281xStrip) SetPixel(i int, c led.Color) {
	s.dev.Leds(0)[i] = uint32(c)
}

// Show pushes the staged frame to the strip.
func (s *WS281xStrip) Show() error {
	return errors.Wrap(s.dev.Render(), "failed to render")
}

// Close blanks the strip and releases the device.
func (s *WS281xStrip) Close() error {
	leds := s.dev.Leds(0)
	for i := range leds {
		leds[i] = uint32(led.Black)
	}
	if err := s.dev.Render(); err != nil {
		return errors.Wrap(err, "failed to blank strip")
	}
	s.dev.Fini()
	return nil
}
