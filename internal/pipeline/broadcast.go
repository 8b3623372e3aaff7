package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/pkg/geo"
)

// Publisher is the Push Bus capability a Broadcaster needs: fan out an
// event to every client joined to room.
type Publisher interface {
	Publish(room string, event any)
}

// SubscriberSource supplies the subscribers whose location falls
// within range of a refreshed point (spec.md §4.7 WithinRadius) and
// lets the Broadcaster persist a successful dispatch's timestamp back
// onto the subscriber it was read from, so the cooldown in spec.md
// §4.8 step 2 survives across ticks.
type SubscriberSource interface {
	WithinRadius(loc domain.Location) []domain.Subscriber
	MarkDispatched(id string, at time.Time)
}

// Notifier is the AlertDispatcher capability a Broadcaster needs.
type Notifier interface {
	Dispatch(subscriber domain.Subscriber, loc domain.Location, forecastAlerts []domain.Alert, now time.Time) []domain.Alert
}

// Recorder is the optional audit-sink capability (spec.md §5: dispatch-
// history audit trail). A nil Recorder simply means dispatches aren't
// audited; the core pipeline never depends on one to function.
type Recorder interface {
	RecordDispatch(ctx context.Context, subscriberID string, alerts []domain.Alert, at time.Time) error
}

// airQualityUpdateEvent is the realtime "air-quality-update" event
// shape published on every Scheduler tick per hot location (spec.md
// §6).
type airQualityUpdateEvent struct {
	Type     string          `json:"type"`
	Forecast domain.Forecast `json:"forecast"`
}

// Broadcaster wraps a Pipeline with the two fan-out steps spec.md
// §4.9 step 2e requires after a refresh: publishing the Forecast to
// its Push Bus room, and routing it through the AlertDispatcher for
// every subscriber within range. It satisfies scheduler.Pipeline.
type Broadcaster struct {
	*Pipeline
	push     Publisher
	subs     SubscriberSource
	notifier Notifier
	recorder Recorder
}

// NewBroadcaster builds a Broadcaster around an existing Pipeline.
// recorder may be nil; a nil recorder simply means dispatches aren't
// audited.
func NewBroadcaster(p *Pipeline, push Publisher, subs SubscriberSource, notifier Notifier, recorder Recorder) *Broadcaster {
	return &Broadcaster{Pipeline: p, push: push, subs: subs, notifier: notifier, recorder: recorder}
}

// RefreshLocation regenerates the Forecast for loc, publishes it to
// its quantized Push Bus room, and dispatches alerts to every
// subscriber within range. It satisfies scheduler.Pipeline.
func (b *Broadcaster) RefreshLocation(ctx context.Context, loc domain.Location) error {
	f, err := b.Forecast(ctx, loc, 24)
	if err != nil {
		return err
	}

	room := fmt.Sprintf("loc:%.2f,%.2f", geo.Quantize(loc.Lat), geo.Quantize(loc.Lng))
	b.push.Publish(room, airQualityUpdateEvent{Type: "air-quality-update", Forecast: f})

	dispatchToSubscribers(ctx, b.subs, b.notifier, b.recorder, loc, f.Alerts, time.Now().UTC())
	return nil
}

// dispatchToSubscribers routes forecastAlerts through notifier for
// every subscriber subs reports within range of loc, persisting
// lastDispatchAt back onto each subscriber that actually received a
// send so the cooldown (spec.md §4.8 step 2, invariant 9) survives
// across scheduler ticks, and writing an audit entry through recorder
// (spec.md §5) when one is configured. Split out from RefreshLocation
// so it is testable without a full upstream-backed Forecast.
func dispatchToSubscribers(ctx context.Context, subs SubscriberSource, notifier Notifier, recorder Recorder, loc domain.Location, forecastAlerts []domain.Alert, now time.Time) {
	for _, sub := range subs.WithinRadius(loc) {
		dispatched := notifier.Dispatch(sub, loc, forecastAlerts, now)
		if len(dispatched) == 0 {
			continue
		}
		subs.MarkDispatched(sub.ID, now)
		if recorder == nil {
			continue
		}
		if err := recorder.RecordDispatch(ctx, sub.ID, dispatched, now); err != nil {
			log.Warn().Err(err).Str("subscriber", sub.ID).Msg("audit sink failed to record dispatch")
		}
	}
}
