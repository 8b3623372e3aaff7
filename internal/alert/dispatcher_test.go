package alert

import (
	"testing"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

type recordingPush struct {
	events []any
}

func (r *recordingPush) Publish(room string, event any) {
	r.events = append(r.events, event)
}

func subscriberWithWarning(warning int) domain.Subscriber {
	return domain.Subscriber{
		ID:       "sub-1",
		Location: domain.Location{Lat: 0, Lng: 0, RadiusKm: 10},
		Prefs: domain.Prefs{
			AQIThresholds: domain.AQIThresholds{Warning: warning, Critical: warning + 100, Emergency: warning + 200},
			Channels:      []domain.Channel{domain.ChannelPush},
			Enabled:       true,
		},
	}
}

func aqiAlert(aqi, hoursUntil int) domain.Alert {
	return domain.Alert{Kind: domain.AlertAQIWarning, AQI: aqi, HoursUntil: hoursUntil, Severity: domain.SeverityWarning}
}

// S5 from spec.md §8: exactly two dispatches across three forecasts
// spaced across a 1h cooldown.
func TestDispatchCooldownScenarioS5(t *testing.T) {
	push := &recordingPush{}
	d := New(push, nil, nil, time.Hour)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := subscriberWithWarning(100)

	dispatched := 0

	// Forecast A at t=0: AQI=130 at h=3 -> dispatch.
	if alerts := d.Dispatch(sub, sub.Location, []domain.Alert{aqiAlert(130, 3)}, t0); len(alerts) > 0 {
		dispatched++
		now := t0
		sub.LastDispatchAt = &now
	}

	// Forecast B at t=+20min: AQI=140 at h=2 -> no dispatch (cooldown).
	t1 := t0.Add(20 * time.Minute)
	if alerts := d.Dispatch(sub, sub.Location, []domain.Alert{aqiAlert(140, 2)}, t1); len(alerts) > 0 {
		dispatched++
	}

	// Forecast C at t=+65min: AQI=105 at h=1 -> dispatch.
	t2 := t0.Add(65 * time.Minute)
	if alerts := d.Dispatch(sub, sub.Location, []domain.Alert{aqiAlert(105, 1)}, t2); len(alerts) > 0 {
		dispatched++
		sub.LastDispatchAt = &t2
	}

	if dispatched != 2 {
		t.Fatalf("expected exactly 2 dispatches, got %d", dispatched)
	}
	history := d.History("sub-1", 10)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
}

func TestDispatchSkipsWhenDisabled(t *testing.T) {
	push := &recordingPush{}
	d := New(push, nil, nil, time.Hour)
	sub := subscriberWithWarning(100)
	sub.Prefs.Enabled = false

	alerts := d.Dispatch(sub, sub.Location, []domain.Alert{aqiAlert(200, 1)}, time.Now())
	if alerts != nil {
		t.Errorf("expected no dispatch when disabled")
	}
}

func TestDispatchFiltersBelowSubscriberThreshold(t *testing.T) {
	push := &recordingPush{}
	d := New(push, nil, nil, time.Hour)
	sub := subscriberWithWarning(150) // subscriber wants a higher bar than the forecast default

	alerts := d.Dispatch(sub, sub.Location, []domain.Alert{aqiAlert(120, 1)}, time.Now())
	if alerts != nil {
		t.Errorf("expected alert below subscriber's own threshold to be filtered out")
	}
}

func TestSMSBodyCapped(t *testing.T) {
	var alerts []domain.Alert
	for i := 0; i < 20; i++ {
		alerts = append(alerts, domain.Alert{Kind: domain.AlertAQICritical, Message: "critical air quality condition forecast for your area", Severity: domain.SeverityCritical, HoursUntil: i})
	}
	body := smsBody(alerts)
	if len(body) > 160 {
		t.Errorf("sms body length %d exceeds 160", len(body))
	}
}
