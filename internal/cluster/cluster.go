// Package cluster groups dated images into capture events and assigns each
// event to a single year (or year/month) bucket.
//
// An event is a maximal run of photos, in capture order, where consecutive
// shots are closer together than the configured gap. Events are never split:
// a party that crosses midnight on New Year's Eve lands in the bucket of its
// first photo.
package cluster

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/maruel/natural"
)

// Item is a file with a resolved capture time.
type Item struct {
	Path  string
	Taken time.Time
}

// Event is a non-empty, time-ordered run of items.
type Event []Item

// Start returns the capture time of the first member.
func (e Event) Start() time.Time {
	if len(e) == 0 {
		return time.Time{}
	}
	return e[0].Taken
}

// Key identifies a bucket. Month is zero when months are not split.
type Key struct {
	Year  int
	Month int
}

// Dir renders the key as a relative directory ("2021" or "2021/03").
func (k Key) Dir() string {
	if k.Month == 0 {
		return strconv.Itoa(k.Year)
	}
	return filepath.Join(strconv.Itoa(k.Year), fmt.Sprintf("%02d", k.Month))
}

func (k Key) String() string {
	return filepath.ToSlash(k.Dir())
}

func (k Key) less(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Bucket is the set of items filed under one key, in event order.
type Bucket struct {
	Key   Key
	Items []Item
}

// Options controls clustering.
type Options struct {
	MinGapDays   int
	SplitByMonth bool
}

// ErrUndated is returned when an item without a capture time is passed in.
var ErrUndated = errors.New("cluster: item has no capture time")

// Cluster segments items into events and assigns the events to buckets.
func Cluster(items []Item, opts Options) ([]Bucket, error) {
	if opts.MinGapDays < 1 {
		return nil, fmt.Errorf("cluster: min gap must be at least 1 day, got %d", opts.MinGapDays)
	}
	for _, item := range items {
		if item.Taken.IsZero() {
			return nil, fmt.Errorf("%w: %s", ErrUndated, item.Path)
		}
	}
	events := Segment(items, time.Duration(opts.MinGapDays)*24*time.Hour)
	return Assign(events, opts.SplitByMonth), nil
}

// Segment sorts a copy of items by capture time and starts a new event
// whenever the gap to the previous item is at least minGap.
func Segment(items []Item, minGap time.Duration) []Event {
	if len(items) == 0 {
		return nil
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compareItems)

	var events []Event
	current := Event{sorted[0]}
	for _, item := range sorted[1:] {
		if item.Taken.Sub(current[len(current)-1].Taken) >= minGap {
			events = append(events, current)
			current = Event{item}
			continue
		}
		current = append(current, item)
	}
	return append(events, current)
}

// Assign files every event under the key derived from its first member.
// Buckets come back in ascending key order.
func Assign(events []Event, splitByMonth bool) []Bucket {
	index := make(map[Key]int)
	var buckets []Bucket
	for _, event := range events {
		if len(event) == 0 {
			continue
		}
		key := KeyFor(event.Start(), splitByMonth)
		pos, ok := index[key]
		if !ok {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[pos].Items = append(buckets[pos].Items, event...)
	}
	slices.SortStableFunc(buckets, func(a, b Bucket) int {
		switch {
		case a.Key.less(b.Key):
			return -1
		case b.Key.less(a.Key):
			return 1
		default:
			return 0
		}
	})
	return buckets
}

// KeyFor returns the bucket key for a timestamp.
func KeyFor(ts time.Time, splitByMonth bool) Key {
	key := Key{Year: ts.Year()}
	if splitByMonth {
		key.Month = int(ts.Month())
	}
	return key
}

func compareItems(a, b Item) int {
	if c := a.Taken.Compare(b.Taken); c != 0 {
		return c
	}
	an, bn := filepath.Base(a.Path), filepath.Base(b.Path)
	switch {
	case natural.Less(an, bn):
		return -1
	case natural.Less(bn, an):
		return 1
	}
	switch {
	case a.Path < b.Path:
		return -1
	case a.Path > b.Path:
		return 1
	default:
		return 0
	}
}
