package beatglow

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"libdb.so/beatglow/analysis"
)

// Daemon ties a hardware strip, a display controller and an audio feed into
// one supervised run loop.
type Daemon struct {
	cfg    *Config
	feed   *analysis.Feed
	logger *slog.Logger
}

// NewDaemon creates a new beatglow daemon.
func NewDaemon(cfg *Config, feed *analysis.Feed, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Daemon{
		cfg:    cfg,
		feed:   feed,
		logger: logger,
	}, nil
}

// Run opens the strip, starts rendering and playback, and blocks until the
// given context is canceled. Workers are always torn down on the way out.
func (d *Daemon) Run(ctx context.Context) error {
	strip, err := OpenStrip(d.cfg, d.logger)
	if err != nil {
		return errors.Wrap(err, "failed to open strip")
	}

	ctrl, err := NewController(d.cfg, strip, d.logger)
	if err != nil {
		return err
	}

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		<-ctx.Done()
		ctrl.TerminateAll()
		if closer, ok := strip.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				return errors.Wrap(err, "failed to close strip")
			}
		}
		return ctx.Err()
	})

	errg.Go(func() error {
		ctrl.StartRefresh()
		d.feed.Start(0)
		return ctrl.StartPattern(d.cfg.pattern(), d.feed)
	})

	return errg.Wait()
}
