package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/airwatch/aqcore/internal/alert"
	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/internal/subscription"
)

type recordingPush struct {
	events []any
}

func (r *recordingPush) Publish(room string, event any) { r.events = append(r.events, event) }

type recordingSink struct {
	records []string
}

func (r *recordingSink) RecordDispatch(ctx context.Context, subscriberID string, alerts []domain.Alert, at time.Time) error {
	r.records = append(r.records, subscriberID)
	return nil
}

func aqiAlert(aqi, hoursUntil int) domain.Alert {
	return domain.Alert{Kind: domain.AlertAQIWarning, AQI: aqi, HoursUntil: hoursUntil, Severity: domain.SeverityWarning}
}

// TestDispatchToSubscribersPersistsCooldown reproduces spec.md §8's S5
// scenario through the Registry, asserting that dispatchToSubscribers
// (the loop RefreshLocation drives) actually writes lastDispatchAt
// back onto the subscriber it read, so a second refresh within the
// cooldown window observes it and skips.
func TestDispatchToSubscribersPersistsCooldown(t *testing.T) {
	reg := subscription.NewRegistry()
	reg.Subscribe("sub-1", domain.Location{Lat: 0, Lng: 0, RadiusKm: 10}, domain.Prefs{
		AQIThresholds: domain.AQIThresholds{Warning: 100, Critical: 200, Emergency: 300},
		Channels:      []domain.Channel{domain.ChannelPush},
		Enabled:       true,
	})

	push := &recordingPush{}
	sink := &recordingSink{}
	disp := alert.New(push, nil, nil, time.Hour)
	ctx := context.Background()

	loc := domain.Location{Lat: 0, Lng: 0}
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Forecast A at t=0: AQI=130 -> dispatch, and the cooldown must
	// persist onto the registry's copy of the subscriber.
	dispatchToSubscribers(ctx, reg, disp, sink, loc, []domain.Alert{aqiAlert(130, 3)}, t0)
	sub, _ := reg.Get("sub-1")
	if sub.LastDispatchAt == nil || !sub.LastDispatchAt.Equal(t0) {
		t.Fatalf("expected lastDispatchAt persisted to the registry, got %v", sub.LastDispatchAt)
	}

	// Forecast B at t=+20min: still within cooldown -> no second send.
	t1 := t0.Add(20 * time.Minute)
	dispatchToSubscribers(ctx, reg, disp, sink, loc, []domain.Alert{aqiAlert(140, 2)}, t1)
	if len(push.events) != 1 {
		t.Fatalf("expected exactly 1 push event after cooldown-gated second refresh, got %d", len(push.events))
	}

	// Forecast C at t=+65min: cooldown has elapsed -> dispatches again.
	t2 := t0.Add(65 * time.Minute)
	dispatchToSubscribers(ctx, reg, disp, sink, loc, []domain.Alert{aqiAlert(105, 1)}, t2)
	if len(push.events) != 2 {
		t.Fatalf("expected exactly 2 push events total, got %d", len(push.events))
	}

	history := disp.History("sub-1", 10)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 audit sink records for 2 successful dispatches, got %d", len(sink.records))
	}
}

// TestDispatchToSubscribersSkipsOutsideRadius confirms a subscriber
// whose radius excludes loc never receives a Dispatch call (and so
// never has lastDispatchAt touched).
func TestDispatchToSubscribersSkipsOutsideRadius(t *testing.T) {
	reg := subscription.NewRegistry()
	reg.Subscribe("far", domain.Location{Lat: 45, Lng: 45, RadiusKm: 1}, domain.Prefs{
		AQIThresholds: domain.AQIThresholds{Warning: 100, Critical: 200, Emergency: 300},
		Channels:      []domain.Channel{domain.ChannelPush},
		Enabled:       true,
	})
	push := &recordingPush{}
	disp := alert.New(push, nil, nil, time.Hour)

	dispatchToSubscribers(context.Background(), reg, disp, nil, domain.Location{Lat: 0, Lng: 0}, []domain.Alert{aqiAlert(130, 3)}, time.Now().UTC())

	if len(push.events) != 0 {
		t.Fatalf("expected no dispatch for an out-of-radius subscriber, got %d events", len(push.events))
	}
	sub, _ := reg.Get("far")
	if sub.LastDispatchAt != nil {
		t.Fatalf("expected lastDispatchAt untouched for a subscriber never dispatched to")
	}
}
