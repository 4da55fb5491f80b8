package beatglow

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/beatglow/internal/led"
)

// stubStrip records frames instead of touching hardware.
type stubStrip struct {
	mu      sync.Mutex
	pixels  led.Frame
	shows   int
	showErr error
}

var _ Strip = (*stubStrip)(nil)

func newStubStrip(n int) *stubStrip {
	return &stubStrip{pixels: led.NewFrame(n)}
}

func (s *stubStrip) SetPixel(i int, c led.Color) {
	s.mu.Lock()
	s.pixels[i] = c
	s.mu.Unlock()
}

func (s *stubStrip) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows++
	return s.showErr
}

func (s *stubStrip) showCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows
}

func (s *stubStrip) pixel(i int) led.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixels[i]
}

func (s *stubStrip) allBlack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.pixels {
		if c != led.Black {
			return false
		}
	}
	return true
}

func testConfig(n int) *Config {
	return &Config{
		Output:          "serial",
		Device:          "/dev/ttyACM0",
		Baud:            115200,
		NumPixels:       n,
		RefreshInterval: TOMLDuration(time.Millisecond),
		IdlePoll:        TOMLDuration(time.Millisecond),
	}
}

func newTestController(t *testing.T, n int) *Controller {
	t.Helper()
	return newTestControllerWithStrip(t, newStubStrip(n), n)
}

func newTestControllerWithStrip(t *testing.T, strip Strip, n int) *Controller {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewController(testConfig(n), strip, logger)
	require.NoError(t, err)
	t.Cleanup(c.TerminateAll)
	return c
}

func (c *Controller) workersRunning() (refresh bool, animations int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh != nil, len(c.animations)
}

func TestRefreshWorkerRendersBuffer(t *testing.T) {
	strip := newStubStrip(10)
	c := newTestControllerWithStrip(t, strip, 10)

	c.StartRefresh()
	c.buf.Set(3, led.Red)

	assert.Eventually(t, func() bool {
		return strip.pixel(3) == led.Red && strip.showCount() > 0
	}, time.Second, time.Millisecond)
}

func TestStartRefreshTwice(t *testing.T) {
	c := newTestController(t, 10)

	c.StartRefresh()
	c.StartRefresh()

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.NotNil(t, c.refresh)
}

func TestTerminateAllIsIdempotent(t *testing.T) {
	c := newTestController(t, 10)

	// Nothing running yet.
	c.TerminateAll()

	c.StartRefresh()
	c.TerminateAll()
	c.TerminateAll()

	refresh, animations := c.workersRunning()
	assert.False(t, refresh)
	assert.Zero(t, animations)
}

func TestReinitialize(t *testing.T) {
	strip := newStubStrip(10)
	c := newTestControllerWithStrip(t, strip, 10)

	require.NoError(t, c.CreateGroupOfEveryNth(2, 0, "A"))
	require.NoError(t, c.UpdateGroup("A", led.Red))

	c.Reinitialize()

	// Fresh zeroed buffer of the same length.
	assert.Equal(t, 10, c.buf.Len())
	for i := 0; i < c.buf.Len(); i++ {
		assert.Equal(t, led.Black, c.buf.At(i), "pixel %d", i)
	}

	// A fresh refresh worker is pushing frames again.
	before := strip.showCount()
	assert.Eventually(t, func() bool {
		return strip.showCount() > before
	}, time.Second, time.Millisecond)
}

func TestRefreshWorkerStopsOnHardwareFault(t *testing.T) {
	strip := newStubStrip(10)
	strip.showErr = assert.AnError
	c := newTestControllerWithStrip(t, strip, 10)

	c.StartRefresh()

	require.Eventually(t, func() bool {
		return strip.showCount() == 1
	}, time.Second, time.Millisecond)

	// The worker is gone for good; no retry, no restart.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, strip.showCount())
}
