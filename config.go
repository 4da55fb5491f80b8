package beatglow

import (
	"encoding"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Default worker cadences, used when the configuration leaves them unset.
const (
	DefaultRefreshInterval = 5 * time.Millisecond
	DefaultIdlePoll        = 10 * time.Millisecond
)

// Config is the configuration for the beatglow daemon.
type Config struct {
	// Output selects the hardware backend: "serial" or "ws281x".
	Output string `toml:"output"`
	// Device is the serial device file, e.g. /dev/ttyUSB0 or /dev/ttyACM0.
	// Only used by the serial backend.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// GPIOPin is the data pin for the ws281x backend.
	GPIOPin int `toml:"gpio_pin"`
	// Brightness is the ws281x global brightness, 0-255.
	Brightness int `toml:"brightness"`
	// NumPixels is the length of the strip.
	NumPixels int `toml:"num_pixels"`
	// RefreshInterval is the pause between refresh cycles.
	RefreshInterval TOMLDuration `toml:"refresh_interval"`
	// IdlePoll is the pause animation workers take when they have nothing to
	// act on.
	IdlePoll TOMLDuration `toml:"idle_poll"`
	// Pattern is the lighting pattern to start playback with.
	Pattern string `toml:"pattern"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.NumPixels <= 0 {
		return errors.New("no pixels configured")
	}

	switch c.Output {
	case "serial":
		if c.Device == "" {
			return errors.New("serial output needs a device")
		}
		if c.Baud <= 0 {
			return errors.New("serial output needs a baud rate")
		}
	case "ws281x":
		if c.GPIOPin <= 0 {
			return errors.New("ws281x output needs a gpio pin")
		}
	case "":
		return errors.New("no output backend configured")
	default:
		return errors.Errorf("unknown output backend %q", c.Output)
	}

	if c.Brightness < 0 || c.Brightness > 255 {
		return errors.Errorf("brightness %d out of range", c.Brightness)
	}

	if c.Pattern != "" {
		if _, err := patternSpecs(PatternKind(c.Pattern)); err != nil {
			return err
		}
	}

	return nil
}

// pattern returns the configured pattern or the default.
func (c *Config) pattern() PatternKind {
	if c.Pattern != "" {
		return PatternKind(c.Pattern)
	}
	return DualBeats
}

// refreshInterval returns the configured refresh cadence or the default.
func (c *Config) refreshInterval() time.Duration {
	if c.RefreshInterval > 0 {
		return time.Duration(c.RefreshInterval)
	}
	return DefaultRefreshInterval
}

// idlePoll returns the configured idle poll pause or the default.
func (c *Config) idlePoll() time.Duration {
	if c.IdlePoll > 0 {
		return time.Duration(c.IdlePoll)
	}
	return DefaultIdlePoll
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
