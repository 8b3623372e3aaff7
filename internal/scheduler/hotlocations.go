package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/pkg/geo"
)

// SubscriberLocations is the subset of subscription.Registry the hot
// location tracker needs.
type SubscriberLocations interface {
	AllLocations() []domain.Location
}

// HotLocationTracker implements HotLocationSource: the union of every
// subscriber's location and any location touched by a request within
// the last window, per spec.md §4.9 step 2 / glossary "hot location".
type HotLocationTracker struct {
	subscribers SubscriberLocations
	window      time.Duration

	mu      sync.Mutex
	touched map[string]touchedLocation
}

type touchedLocation struct {
	loc domain.Location
	at  time.Time
}

// NewHotLocationTracker builds a tracker with the given recency
// window (typically a client's cache TTL).
func NewHotLocationTracker(subscribers SubscriberLocations, window time.Duration) *HotLocationTracker {
	return &HotLocationTracker{
		subscribers: subscribers,
		window:      window,
		touched:     make(map[string]touchedLocation),
	}
}

// Touch records that loc was requested, keeping it hot for window.
func (h *HotLocationTracker) Touch(loc domain.Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := roomKey(loc)
	h.touched[key] = touchedLocation{loc: loc, at: time.Now()}
}

// HotLocations returns the deduplicated union of subscriber locations
// and recently-touched request locations.
func (h *HotLocationTracker) HotLocations() []domain.Location {
	h.mu.Lock()
	now := time.Now()
	for k, t := range h.touched {
		if now.Sub(t.at) > h.window {
			delete(h.touched, k)
		}
	}
	touched := make(map[string]domain.Location, len(h.touched))
	for k, t := range h.touched {
		touched[k] = t.loc
	}
	h.mu.Unlock()

	for _, loc := range h.subscribers.AllLocations() {
		touched[roomKey(loc)] = loc
	}

	out := make([]domain.Location, 0, len(touched))
	for _, loc := range touched {
		out = append(out, loc)
	}
	return out
}

// roomKey quantizes a location to the granularity that treats nearby
// requests/subscribers as the same hot location.
func roomKey(loc domain.Location) string {
	return fmt.Sprintf("%.2f,%.2f", geo.Quantize(loc.Lat), geo.Quantize(loc.Lng))
}
