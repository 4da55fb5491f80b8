package beatglow

import (
	"context"
	"time"

	"libdb.so/beatglow/analysis"
	"libdb.so/beatglow/internal/led"
)

// AnimationConfig describes one group's audio-reactive animation.
type AnimationConfig struct {
	// Group is the pixel group the animation writes to.
	Group string
	// Trigger is the analysis category whose items fire the group.
	Trigger string
	// ColorChangeOn is the category whose item changes select a new color.
	ColorChangeOn string
	// Stride makes the animation act only on every Stride-th trigger item.
	Stride int
	// Palette holds the candidate colors, indexed by item index. Empty means
	// a random color per change.
	Palette []led.Color
}

// fadeSteps is the number of interpolation steps of one fade to black.
const fadeSteps = 100

// runAnimation drives one group's pattern until the track ends or ctx is
// canceled.
//
// Each iteration polls the feed's active items. A change of the color-change
// category's item selects a new color. The trigger category's item then
// passes two gates: a confidence gate (items below half the category's
// average confidence are ignored) and a stride gate (only every Stride-th
// item index acts). An item that passes both lights the group and fades it
// back to black over the item's duration scaled by the stride.
func (c *Controller) runAnimation(ctx context.Context, feed AudioFeed, cfg AnimationConfig) {
	logger := c.logger.With("group", cfg.Group)
	idle := c.cfg.idlePoll()

	stride := cfg.Stride
	if stride < 1 {
		stride = 1
	}

	color := led.Black
	var last map[string]analysis.Item

	// Leave the group dark on the way out so a canceled fade does not freeze
	// the pixels mid-color.
	defer func() {
		_ = c.UpdateGroup(cfg.Group, led.Black)
		logger.Debug("animation worker exited")
	}()

	for ctx.Err() == nil && feed.Progress() < feed.TrackDuration() {
		now := feed.Active()
		if len(now) == 0 {
			// Playback paused or the feed hiccuped. The supervisor decides
			// when this means the track is over; just wait.
			if !sleep(ctx, idle) {
				return
			}
			continue
		}

		if item, ok := now[cfg.ColorChangeOn]; ok && item != last[cfg.ColorChangeOn] {
			color = pickColor(cfg.Palette, item)
		}

		item, ok := now[cfg.Trigger]
		if !ok || item.Confidence < feed.ConfidenceAverage(cfg.Trigger)*0.5 {
			if !sleep(ctx, idle) {
				return
			}
			continue
		}

		if item != last[cfg.Trigger] && item.Index%stride == 0 {
			if err := c.UpdateGroup(cfg.Group, color); err != nil {
				logger.Error("group vanished mid-animation", "error", err)
				return
			}
			c.fadeGroup(ctx, cfg.Group, color, item.Duration, stride)
		}

		last = now
		if !sleep(ctx, idle) {
			return
		}
	}
}

// pickColor maps an item onto the palette, or picks a random color when no
// palette was given.
func pickColor(palette []led.Color, item analysis.Item) led.Color {
	if len(palette) == 0 {
		return led.Random()
	}
	return palette[item.Index%len(palette)]
}

// fadeGroup interpolates the group from start to black in fadeSteps steps,
// paced so the whole fade spans half the trigger item's duration times the
// stride.
func (c *Controller) fadeGroup(ctx context.Context, group string, start led.Color, duration time.Duration, stride int) {
	step := duration / fadeSteps * time.Duration(stride) / 2
	for i := 1; i <= fadeSteps; i++ {
		if !sleep(ctx, step) {
			return
		}
		mid := led.Interpolate(start, led.Black, float64(i)/fadeSteps)
		if c.UpdateGroup(group, mid) != nil {
			return
		}
	}
}
