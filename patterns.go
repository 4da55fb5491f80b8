package beatglow

import (
	"context"

	"github.com/pkg/errors"

	"libdb.so/beatglow/analysis"
	"libdb.so/beatglow/internal/led"
)

// PatternKind names a built-in lighting pattern.
type PatternKind string

const (
	// DualBeats splits the strip into two interleaved groups: one lit on
	// every beat in red/white, one on every second beat in a fall palette.
	DualBeats PatternKind = "dual-beats"
	// DualBeatsWithTatums splits the strip three ways and drives the third
	// group from tatums.
	DualBeatsWithTatums PatternKind = "dual-beats-tatums"
)

type groupSpec struct {
	n, offset int
	anim      AnimationConfig
}

func patternSpecs(kind PatternKind) ([]groupSpec, error) {
	switch kind {
	case DualBeats:
		return []groupSpec{
			{2, 0, AnimationConfig{
				Group:         "all_beat",
				Trigger:       analysis.Beats,
				ColorChangeOn: analysis.Beats,
				Stride:        1,
				Palette:       []led.Color{led.Red, led.White},
			}},
			{2, 1, AnimationConfig{
				Group:         "every_2nd_beat",
				Trigger:       analysis.Beats,
				ColorChangeOn: analysis.Bars,
				Stride:        2,
				Palette:       []led.Color{led.Green, led.AutumnOrange, led.BrightViolet, led.FallYellow},
			}},
		}, nil

	case DualBeatsWithTatums:
		return []groupSpec{
			{3, 0, AnimationConfig{
				Group:         "all_beat",
				Trigger:       analysis.Beats,
				ColorChangeOn: analysis.Beats,
				Stride:        1,
				Palette:       []led.Color{led.Red, led.White},
			}},
			{3, 1, AnimationConfig{
				Group:         "every_2nd_beat",
				Trigger:       analysis.Beats,
				ColorChangeOn: analysis.Bars,
				Stride:        2,
				Palette:       []led.Color{led.Green, led.AutumnOrange, led.BrightViolet, led.FallYellow},
			}},
			{3, 2, AnimationConfig{
				Group:         "tatum",
				Trigger:       analysis.Tatums,
				ColorChangeOn: analysis.Bars,
				Stride:        1,
				Palette:       []led.Color{led.BrightViolet},
			}},
		}, nil

	default:
		return nil, errors.Errorf("unknown pattern %q", kind)
	}
}

// StartPattern replaces the current pattern: running animation workers are
// stopped, group definitions are recreated for the chosen preset, and one
// animation worker per group plus the track supervisor are started. The
// refresh worker is started if it is not running yet.
func (c *Controller) StartPattern(kind PatternKind, feed AudioFeed) error {
	specs, err := patternSpecs(kind)
	if err != nil {
		return err
	}

	c.stopAnimations()

	c.mu.Lock()
	c.groups = make(map[string][]int)
	c.mu.Unlock()

	for _, spec := range specs {
		if err := c.CreateGroupOfEveryNth(spec.n, spec.offset, spec.anim.Group); err != nil {
			return errors.Wrapf(err, "pattern %q", kind)
		}
	}

	c.logger.Info("starting pattern", "pattern", string(kind), "groups", len(specs))

	c.mu.Lock()
	defer c.mu.Unlock()

	c.startRefreshLocked()
	for _, spec := range specs {
		anim := spec.anim
		c.logger.Info("starting animation worker",
			"group", anim.Group,
			"trigger", anim.Trigger,
			"stride", anim.Stride)
		c.animations[anim.Group] = spawn(func(ctx context.Context) {
			c.runAnimation(ctx, feed, anim)
		})
	}
	c.supervisor = spawn(func(ctx context.Context) {
		c.superviseTrack(ctx, feed)
	})

	return nil
}
