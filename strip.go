package beatglow

import (
	"log/slog"

	"github.com/pkg/errors"

	"libdb.so/beatglow/internal/led"
)

// Strip is the hardware output the refresh worker renders to. Implementations
// buffer SetPixel writes and push a whole frame on Show. It is kept to a
// minimum.
type Strip interface {
	// SetPixel stages the color of the pixel at index i.
	SetPixel(i int, c led.Color)
	// Show pushes the staged frame to the hardware.
	Show() error
}

// OpenStrip opens the hardware backend named by the configuration. The
// returned Strip also implements io.Closer.
func OpenStrip(cfg *Config, logger *slog.Logger) (Strip, error) {
	switch cfg.Output {
	case "serial":
		return OpenSerialStrip(cfg.Device, cfg.Baud, cfg.NumPixels, logger)
	case "ws281x":
		return OpenWS281xStrip(cfg.GPIOPin, cfg.Brightness, cfg.NumPixels)
	default:
		return nil, errors.Errorf("unknown output backend %q", cfg.Output)
	}
}
