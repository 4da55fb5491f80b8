package analysis

import (
	"sort"
	"sync"
	"time"
)

// Feed anchors an Analysis to the wall clock and answers "what is active
// right now" queries from animation workers. It is safe for concurrent use.
type Feed struct {
	analysis *Analysis
	avg      map[string]float64

	mu      sync.Mutex
	playing bool
	anchor  time.Time     // wall time progress was last anchored at
	at      time.Duration // track progress at anchor
	now     func() time.Time
}

// NewFeed builds a feed over a parsed analysis. Playback is stopped until
// Start is called.
func NewFeed(a *Analysis) *Feed {
	avg := make(map[string]float64, len(a.Items))
	for cat, items := range a.Items {
		if len(items) == 0 {
			continue
		}
		var sum float64
		for _, it := range items {
			sum += it.Confidence
		}
		avg[cat] = sum / float64(len(items))
	}

	return &Feed{
		analysis: a,
		avg:      avg,
		now:      time.Now,
	}
}

// Start marks the track as playing from the given progress.
func (f *Feed) Start(progress time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
	f.anchor = f.now()
	f.at = progress
}

// Stop marks playback as stopped. Active reports nothing until Start is
// called again; Progress freezes at the position playback stopped at.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing {
		f.at = f.progressLocked()
		f.playing = false
	}
}

// Progress returns the current playback position.
func (f *Feed) Progress() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progressLocked()
}

func (f *Feed) progressLocked() time.Duration {
	if !f.playing {
		return f.at
	}
	return f.at + f.now().Sub(f.anchor)
}

// TrackDuration returns the total track length.
func (f *Feed) TrackDuration() time.Duration {
	return f.analysis.TrackDuration
}

// ConfidenceAverage returns the category's mean confidence, or 0 when the
// category is empty.
func (f *Feed) ConfidenceAverage(category string) float64 {
	return f.avg[category]
}

// Active returns the item of each category active at the current progress.
// Categories with no active item are absent. The map is empty when playback
// is stopped.
func (f *Feed) Active() map[string]Item {
	f.mu.Lock()
	playing := f.playing
	progress := f.progressLocked()
	f.mu.Unlock()

	active := make(map[string]Item, len(f.analysis.Items))
	if !playing {
		return active
	}

	for cat, items := range f.analysis.Items {
		if it, ok := activeAt(items, progress); ok {
			active[cat] = it
		}
	}
	return active
}

// activeAt binary-searches items, ordered by start time, for the one covering
// progress.
func activeAt(items []Item, progress time.Duration) (Item, bool) {
	i := sort.Search(len(items), func(i int) bool { return items[i].Start > progress })
	if i == 0 {
		return Item{}, false
	}
	it := items[i-1]
	if progress < it.End() {
		return it, true
	}
	return Item{}, false
}
