package beatglow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/beatglow/analysis"
)

func playingFeed() *fakeFeed {
	return &fakeFeed{
		duration: time.Hour,
		avg:      map[string]float64{analysis.Beats: 0.8, analysis.Tatums: 0.8},
		active: map[string]analysis.Item{
			analysis.Beats: {Index: 0, Duration: time.Second, Confidence: 0.9},
		},
	}
}

func TestStartPatternDualBeats(t *testing.T) {
	c := newTestController(t, 10)

	require.NoError(t, c.StartPattern(DualBeats, playingFeed()))

	allBeat, err := c.Group("all_beat")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 6, 8}, allBeat)

	every2nd, err := c.Group("every_2nd_beat")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5, 7, 9}, every2nd)

	refresh, animations := c.workersRunning()
	assert.True(t, refresh)
	assert.Equal(t, 2, animations)
}

func TestStartPatternDualBeatsWithTatums(t *testing.T) {
	c := newTestController(t, 9)

	require.NoError(t, c.StartPattern(DualBeatsWithTatums, playingFeed()))

	for _, name := range []string{"all_beat", "every_2nd_beat", "tatum"} {
		_, err := c.Group(name)
		assert.NoError(t, err, "group %s", name)
	}

	_, animations := c.workersRunning()
	assert.Equal(t, 3, animations)
}

func TestStartPatternReplacesPrevious(t *testing.T) {
	c := newTestController(t, 9)

	require.NoError(t, c.StartPattern(DualBeats, playingFeed()))
	require.NoError(t, c.StartPattern(DualBeatsWithTatums, playingFeed()))

	// Old two-way groups were replaced by the three-way split.
	group, err := c.Group("all_beat")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 6}, group)

	_, animations := c.workersRunning()
	assert.Equal(t, 3, animations)
}

func TestStartPatternUnknown(t *testing.T) {
	c := newTestController(t, 10)
	assert.Error(t, c.StartPattern("strobe", playingFeed()))
}

func TestSupervisorStopsDisplayWhenFeedGoesQuiet(t *testing.T) {
	strip := newStubStrip(10)
	c := newTestControllerWithStrip(t, strip, 10)

	feed := playingFeed()
	feed.active = nil // nothing is ever active

	require.NoError(t, c.StartPattern(DualBeats, feed))

	assert.Eventually(t, func() bool {
		refresh, animations := c.workersRunning()
		return !refresh && animations == 0
	}, time.Second, time.Millisecond)

	assert.Eventually(t, strip.allBlack, time.Second, time.Millisecond)
}

func TestSupervisorStopsDisplayAtTrackEnd(t *testing.T) {
	strip := newStubStrip(10)
	c := newTestControllerWithStrip(t, strip, 10)

	feed := playingFeed()
	feed.progress = feed.duration

	require.NoError(t, c.StartPattern(DualBeats, feed))

	assert.Eventually(t, func() bool {
		refresh, animations := c.workersRunning()
		return !refresh && animations == 0
	}, time.Second, time.Millisecond)

	assert.Eventually(t, strip.allBlack, time.Second, time.Millisecond)
}
