// Package alert implements the AlertDispatcher: per-subscriber
// cooldown gating, threshold evaluation against the subscriber's own
// overrides, channel fan-out, and a bounded dispatch history.
package alert

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/internal/metrics"
)

// DefaultCooldown is the minimum interval between dispatches to the
// same subscriber, per spec.md §4.8.
const DefaultCooldown = time.Hour

// historyCapacity bounds the dispatch history ring; oldest entries are
// evicted once it fills, per spec.md §4.8 step 5.
const historyCapacity = 1000

// PushPublisher is the capability the Push Bus exposes to the
// dispatcher for the "push" channel (spec.md §9: pass capability
// handles down, never retain a back-reference beyond what is used).
type PushPublisher interface {
	Publish(room string, event any)
}

// CapabilitySink is the email/sms capability contract: best-effort,
// failures are logged not surfaced (spec.md §4.8).
type CapabilitySink interface {
	Send(subscriberID, body string) error
}

// HistoryEntry is one recorded dispatch.
type HistoryEntry struct {
	ID           string
	SubscriberID string
	Alerts       []domain.Alert
	At           time.Time
}

// Dispatcher evaluates and dispatches alerts for individual
// subscribers. It owns per-subscriber locks so that cooldown checks
// are race-free (spec.md §5: "per subscriber, Dispatch invocations are
// serialized").
type Dispatcher struct {
	cooldown time.Duration
	push     PushPublisher
	email    CapabilitySink
	sms      CapabilitySink

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	historyMu sync.Mutex
	history   *lru.Cache[string, HistoryEntry]
	order     []string // insertion order, for newest-first iteration
}

// New builds a Dispatcher. push/email/sms may be nil; a nil sink
// silently skips that channel.
func New(push PushPublisher, email, sms CapabilitySink, cooldown time.Duration) *Dispatcher {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	h, _ := lru.New[string, HistoryEntry](historyCapacity)
	return &Dispatcher{
		cooldown: cooldown,
		push:     push,
		email:    email,
		sms:      sms,
		locks:    make(map[string]*sync.Mutex),
		history:  h,
	}
}

func (d *Dispatcher) lockFor(id string) *sync.Mutex {
	d.locksMu.Lock()
	defer d.locksMu.Unlock()
	l, ok := d.locks[id]
	if !ok {
		l = &sync.Mutex{}
		d.locks[id] = l
	}
	return l
}

// Dispatch evaluates forecast's alerts against subscriber's
// preferences and, if any clear the subscriber's thresholds and the
// cooldown has elapsed, sends to every enabled channel. It returns the
// alerts actually dispatched (nil if nothing was sent).
func (d *Dispatcher) Dispatch(subscriber domain.Subscriber, loc domain.Location, forecastAlerts []domain.Alert, now time.Time) []domain.Alert {
	mu := d.lockFor(subscriber.ID)
	mu.Lock()
	defer mu.Unlock()

	if !subscriber.Prefs.Enabled {
		return nil
	}
	if subscriber.LastDispatchAt != nil && now.Sub(*subscriber.LastDispatchAt) < d.cooldown {
		return nil
	}

	relevant := filterBySubscriberThresholds(forecastAlerts, subscriber.Prefs)
	if len(relevant) == 0 {
		return nil
	}

	d.sendToChannels(subscriber, loc, relevant, now)
	d.recordHistory(subscriber.ID, relevant, now)
	return relevant
}

// Test injects a synthetic info alert bypassing cooldown, the POST
// /test endpoint's contract (spec.md §6).
func (d *Dispatcher) Test(subscriber domain.Subscriber, loc domain.Location, now time.Time) []domain.Alert {
	mu := d.lockFor(subscriber.ID)
	mu.Lock()
	defer mu.Unlock()

	alerts := []domain.Alert{{
		Kind:     domain.AlertInfo,
		Severity: domain.SeverityNone,
		Message:  "test notification",
		At:       now,
	}}
	d.sendToChannels(subscriber, loc, alerts, now)
	d.recordHistory(subscriber.ID, alerts, now)
	return alerts
}

func (d *Dispatcher) sendToChannels(subscriber domain.Subscriber, loc domain.Location, alerts []domain.Alert, now time.Time) {
	if subscriber.Prefs.HasChannel(domain.ChannelPush) && d.push != nil {
		d.push.Publish("user:"+subscriber.ID, pushEvent{SubscriberID: subscriber.ID, Alerts: alerts, At: now, Location: loc})
		metrics.AlertDispatches.WithLabelValues("push").Inc()
	}
	if subscriber.Prefs.HasChannel(domain.ChannelEmail) && d.email != nil {
		if err := d.email.Send(subscriber.ID, emailBody(alerts, loc)); err != nil {
			log.Warn().Err(err).Str("subscriber", subscriber.ID).Msg("email dispatch failed")
		} else {
			metrics.AlertDispatches.WithLabelValues("email").Inc()
		}
	}
	if subscriber.Prefs.HasChannel(domain.ChannelSMS) && d.sms != nil {
		if err := d.sms.Send(subscriber.ID, smsBody(alerts)); err != nil {
			log.Warn().Err(err).Str("subscriber", subscriber.ID).Msg("sms dispatch failed")
		} else {
			metrics.AlertDispatches.WithLabelValues("sms").Inc()
		}
	}
}

// pushEvent is the air-quality-alert realtime event shape (spec.md §6).
type pushEvent struct {
	SubscriberID string         `json:"subscriberId"`
	Alerts       []domain.Alert `json:"alerts"`
	At           time.Time      `json:"at"`
	Location     domain.Location `json:"location"`
}

func (d *Dispatcher) recordHistory(subscriberID string, alerts []domain.Alert, now time.Time) {
	d.historyMu.Lock()
	defer d.historyMu.Unlock()

	id := uuid.NewString()
	entry := HistoryEntry{ID: id, SubscriberID: subscriberID, Alerts: alerts, At: now}

	if d.history.Len() >= historyCapacity && len(d.order) > 0 {
		oldest := d.order[0]
		d.order = d.order[1:]
		d.history.Remove(oldest)
	}
	d.history.Add(id, entry)
	d.order = append(d.order, id)
}

// History returns up to limit most-recently-dispatched entries for
// subscriberID, newest first.
func (d *Dispatcher) History(subscriberID string, limit int) []HistoryEntry {
	d.historyMu.Lock()
	defer d.historyMu.Unlock()

	if limit <= 0 || limit > historyCapacity {
		limit = historyCapacity
	}

	var out []HistoryEntry
	for i := len(d.order) - 1; i >= 0 && len(out) < limit; i-- {
		entry, ok := d.history.Get(d.order[i])
		if !ok || entry.SubscriberID != subscriberID {
			continue
		}
		out = append(out, entry)
	}
	return out
}
