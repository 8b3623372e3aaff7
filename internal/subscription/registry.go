// Package subscription implements the SubscriptionRegistry: the sole
// owner of subscriber state, mediating every read and write.
package subscription

import (
	"sync"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/pkg/geo"
)

// ErrUnknownField is domain.ErrBadRequest under the name for a prefs
// patch naming a field Prefs does not have. UpdatePrefs never returns
// it: PrefsPatch is typed, so such a field cannot reach the registry.
var ErrUnknownField = domain.ErrBadRequest

// PrefsPatch is a partial Prefs update. Nil fields are left untouched;
// present fields replace the corresponding Prefs field wholesale.
type PrefsPatch struct {
	AQIThresholds          *domain.AQIThresholds
	PerPollutantThresholds map[domain.Pollutant]domain.PollutantThresholds
	Channels               []domain.Channel
	Enabled                *bool
}

// Registry is the exclusive owner of the subscriber map. Writers
// (Subscribe/Unsubscribe/UpdatePrefs) exclude readers; readers
// (WithinRadius, Get) may proceed concurrently with each other.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[string]domain.Subscriber
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{subscribers: make(map[string]domain.Subscriber)}
}

// Subscribe upserts a subscriber. lastDispatchAt is reset only on a
// true insert, per spec.md §4.7; updating an existing subscriber's
// location/prefs through Subscribe leaves its dispatch history intact.
func (r *Registry) Subscribe(id string, location domain.Location, prefs domain.Prefs) domain.Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.subscribers[id]
	sub := domain.Subscriber{ID: id, Location: location, Prefs: prefs}
	if ok {
		sub.LastDispatchAt = existing.LastDispatchAt
	}
	r.subscribers[id] = sub
	return sub
}

// Unsubscribe removes a subscriber. A no-op if id is unknown.
func (r *Registry) Unsubscribe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, id)
}

// Get returns the subscriber for id.
func (r *Registry) Get(id string) (domain.Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subscribers[id]
	return sub, ok
}

// UpdatePrefs merges patch into the existing subscriber's prefs.
// Returns domain.ErrBadRequest if id is unknown.
func (r *Registry) UpdatePrefs(id string, patch PrefsPatch) (domain.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subscribers[id]
	if !ok {
		return domain.Subscriber{}, domain.ErrBadRequest
	}

	if patch.AQIThresholds != nil {
		sub.Prefs.AQIThresholds = *patch.AQIThresholds
	}
	if patch.PerPollutantThresholds != nil {
		sub.Prefs.PerPollutantThresholds = patch.PerPollutantThresholds
	}
	if patch.Channels != nil {
		sub.Prefs.Channels = patch.Channels
	}
	if patch.Enabled != nil {
		sub.Prefs.Enabled = *patch.Enabled
	}

	r.subscribers[id] = sub
	return sub, nil
}

// MarkDispatched records that a dispatch just occurred for id, so the
// AlertDispatcher's cooldown check observes it on the next evaluation.
func (r *Registry) MarkDispatched(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subscribers[id]
	if !ok {
		return
	}
	sub.LastDispatchAt = &at
	r.subscribers[id] = sub
}

// WithinRadius returns every subscriber whose location is within its
// own radiusKm of loc, using the spherical-earth haversine formula
// (R = 6371 km). A subscriber with radiusKm == 0 never matches, per
// spec.md §8's boundary behavior.
func (r *Registry) WithinRadius(loc domain.Location) []domain.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Subscriber
	for _, sub := range r.subscribers {
		if sub.Location.RadiusKm <= 0 {
			continue
		}
		d := geo.HaversineKm(geo.Point{Lat: loc.Lat, Lng: loc.Lng}, geo.Point{Lat: sub.Location.Lat, Lng: sub.Location.Lng})
		if d <= sub.Location.RadiusKm {
			out = append(out, sub)
		}
	}
	return out
}

// AllLocations returns every subscriber's location, the set the Scheduler unions
// with recently-touched locations to determine "hot" locations.
func (r *Registry) AllLocations() []domain.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Location, 0, len(r.subscribers))
	for _, sub := range r.subscribers {
		out = append(out, sub.Location)
	}
	return out
}

// Len reports the number of subscribers currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}
