// Package beatglow drives an addressable LED strip as a display synchronized
// to music playback analysis. A refresh worker continuously renders a shared
// pixel buffer to the hardware while per-group animation workers write
// audio-reactive colors into it.
package beatglow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"libdb.so/beatglow/analysis"
	"libdb.so/beatglow/internal/led"
)

// AudioFeed is the read-only view of a playing track's audio analysis that
// animation workers poll. It is kept to a minimum.
type AudioFeed interface {
	// Progress returns the current playback position.
	Progress() time.Duration
	// TrackDuration returns the total track length.
	TrackDuration() time.Duration
	// Active returns the currently active item per category. An empty map
	// means playback is stopped or paused.
	Active() map[string]analysis.Item
	// ConfidenceAverage returns the category's running average confidence.
	ConfidenceAverage(category string) float64
}

// Controller owns the pixel buffer, the pixel groups, and every background
// worker of one display session.
type Controller struct {
	cfg    *Config
	strip  Strip
	logger *slog.Logger

	mu         sync.Mutex
	buf        *PixelBuffer
	groups     map[string][]int
	animations map[string]*workerHandle
	refresh    *workerHandle
	supervisor *workerHandle
}

// NewController creates a controller with a zeroed pixel buffer. No workers
// run until StartRefresh or StartPattern is called.
func NewController(cfg *Config, strip Strip, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Controller{
		cfg:        cfg,
		strip:      strip,
		logger:     logger,
		buf:        NewPixelBuffer(cfg.NumPixels),
		groups:     make(map[string][]int),
		animations: make(map[string]*workerHandle),
	}, nil
}

// workerHandle tracks one background worker.
type workerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// stop cancels the worker and waits for it to exit. Calling it more than
// once, or on a nil handle, is fine.
func (h *workerHandle) stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}

func spawn(run func(ctx context.Context)) *workerHandle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &workerHandle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		run(ctx)
	}()
	return h
}

// StartRefresh starts the refresh worker if it is not already running.
func (c *Controller) StartRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startRefreshLocked()
}

func (c *Controller) startRefreshLocked() {
	if c.refresh != nil {
		return
	}
	buf := c.buf
	c.refresh = spawn(func(ctx context.Context) {
		c.refreshLoop(ctx, buf)
	})
	c.logger.Debug("refresh worker started", "pixels", buf.Len(), "interval", c.cfg.refreshInterval())
}

// refreshLoop copies every buffer slot to the strip in index order, flushes,
// and sleeps one refresh interval, bounding a write's latency to roughly one
// interval. A hardware fault is fatal for the worker: it exits without
// restarting, and Reinitialize is the way back to a working display.
func (c *Controller) refreshLoop(ctx context.Context, buf *PixelBuffer) {
	interval := c.cfg.refreshInterval()

	for {
		for i := 0; i < buf.Len(); i++ {
			c.strip.SetPixel(i, buf.At(i))
		}
		if err := c.strip.Show(); err != nil {
			c.logger.Error("cannot push frame to strip, refresh worker exiting", "error", err)
			return
		}
		if !sleep(ctx, interval) {
			return
		}
	}
}

// Reinitialize stops every worker, replaces the pixel buffer with a zeroed
// one and restarts the refresh worker. It is the recovery path back to a
// known-clean state.
func (c *Controller) Reinitialize() {
	c.TerminateAll()

	c.mu.Lock()
	c.buf = NewPixelBuffer(c.cfg.NumPixels)
	c.startRefreshLocked()
	c.mu.Unlock()

	c.logger.Info("all workers stopped, pixel buffer reinitialized and refresh worker restarted")
}

// TerminateAll stops the supervisor, every animation worker and the refresh
// worker. It tolerates nothing running, so it can sit unconditionally in
// shutdown paths.
func (c *Controller) TerminateAll() {
	c.mu.Lock()
	supervisor := c.supervisor
	animations := c.animations
	refresh := c.refresh
	c.supervisor = nil
	c.animations = make(map[string]*workerHandle)
	c.refresh = nil
	c.mu.Unlock()

	supervisor.stop()
	for _, h := range animations {
		h.stop()
	}
	refresh.stop()
}

// stopAnimations stops the supervisor and the animation workers but leaves
// the refresh worker running.
func (c *Controller) stopAnimations() {
	c.mu.Lock()
	supervisor := c.supervisor
	animations := c.animations
	c.supervisor = nil
	c.animations = make(map[string]*workerHandle)
	c.mu.Unlock()

	supervisor.stop()
	for _, h := range animations {
		h.stop()
	}
}

// superviseTrack watches the feed and tears playback down once the track is
// over. End-of-track detection lives here, in one place, instead of inside
// whichever animation worker happens to notice first. A single empty poll is
// not treated as the end; pauses and feed hiccups look the same, so the feed
// must come back empty several times in a row.
func (c *Controller) superviseTrack(ctx context.Context, feed AudioFeed) {
	const emptyPollLimit = 5
	interval := c.cfg.idlePoll()

	empty := 0
	for {
		if !sleep(ctx, interval) {
			return
		}
		if feed.Progress() >= feed.TrackDuration() {
			c.endOfTrack("track finished")
			return
		}
		if len(feed.Active()) == 0 {
			empty++
			if empty >= emptyPollLimit {
				c.endOfTrack("analysis feed went quiet")
				return
			}
			continue
		}
		empty = 0
	}
}

// endOfTrack tears down playback from inside the supervisor: animation
// workers first, then the refresh worker, then one final black frame so the
// strip does not hold the last rendered colors.
func (c *Controller) endOfTrack(reason string) {
	c.logger.Info("stopping display", "reason", reason)

	c.mu.Lock()
	animations := c.animations
	refresh := c.refresh
	c.animations = make(map[string]*workerHandle)
	c.refresh = nil
	c.supervisor = nil
	c.mu.Unlock()

	for _, h := range animations {
		h.stop()
	}
	refresh.stop()
	c.blackout()
}

// blackout zeroes the buffer and pushes one solid black frame directly.
func (c *Controller) blackout() {
	c.mu.Lock()
	buf := c.buf
	c.mu.Unlock()

	buf.Fill(led.Black)
	for i := 0; i < buf.Len(); i++ {
		c.strip.SetPixel(i, led.Black)
	}
	if err := c.strip.Show(); err != nil {
		c.logger.Warn("cannot blank strip", "error", err)
	}
}

// sleep blocks for d or until ctx is canceled, and reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
