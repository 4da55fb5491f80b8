// Package analysis provides a read-only, clock-anchored view over a track's
// remote audio-analysis document: timestamped beat/bar/tatum items, lookup of
// the items active at the current playback position, and per-category
// confidence baselines.
//
// Fetching the document from the music service is not this package's job; it
// consumes an already-retrieved document from an io.Reader.
package analysis

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Analysis category names, matching the keys of the remote analysis document.
const (
	Beats    = "beats"
	Bars     = "bars"
	Tatums   = "tatums"
	Sections = "sections"
)

// Item is one timestamped event within a category.
type Item struct {
	// Index is the item's position within its category, starting at 0.
	Index int
	// Start is the item's offset from the beginning of the track.
	Start time.Duration
	// Duration is how long the item lasts.
	Duration time.Duration
	// Confidence is the service's certainty of the detection, in [0, 1].
	Confidence float64
}

// End returns the instant the item stops being active.
func (it Item) End() time.Duration {
	return it.Start + it.Duration
}

// Analysis is one track's parsed audio-analysis document.
type Analysis struct {
	// TrackDuration is the total length of the track.
	TrackDuration time.Duration
	// Items holds each category's items ordered by start time.
	Items map[string][]Item
}

type rawItem struct {
	Start      float64 `json:"start"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
}

type rawAnalysis struct {
	Track struct {
		Duration float64 `json:"duration"`
	} `json:"track"`
	Beats    []rawItem `json:"beats"`
	Bars     []rawItem `json:"bars"`
	Tatums   []rawItem `json:"tatums"`
	Sections []rawItem `json:"sections"`
}

// Parse decodes an audio-analysis document. Timestamps in the document are
// fractional seconds.
func Parse(r io.Reader) (*Analysis, error) {
	var raw rawAnalysis
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode analysis document")
	}

	if raw.Track.Duration <= 0 {
		return nil, errors.New("analysis document has no track duration")
	}

	return &Analysis{
		TrackDuration: seconds(raw.Track.Duration),
		Items: map[string][]Item{
			Beats:    items(raw.Beats),
			Bars:     items(raw.Bars),
			Tatums:   items(raw.Tatums),
			Sections: items(raw.Sections),
		},
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func items(raw []rawItem) []Item {
	out := make([]Item, len(raw))
	for i, r := range raw {
		out[i] = Item{
			Start:      seconds(r.Start),
			Duration:   seconds(r.Duration),
			Confidence: r.Confidence,
		}
	}
	// Documents arrive ordered by start time already, but the active-item
	// search depends on it.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i := range out {
		out[i].Index = i
	}
	return out
}
