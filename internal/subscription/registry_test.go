package subscription

import (
	"testing"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

func TestSubscribeResetsDispatchOnlyOnInsert(t *testing.T) {
	r := NewRegistry()
	loc := domain.Location{Lat: 1, Lng: 1, RadiusKm: 10}
	prefs := domain.Prefs{Enabled: true}

	r.Subscribe("a", loc, prefs)
	now := time.Now()
	r.MarkDispatched("a", now)

	r.Subscribe("a", loc, prefs) // update, not a fresh insert

	sub, _ := r.Get("a")
	if sub.LastDispatchAt == nil || !sub.LastDispatchAt.Equal(now) {
		t.Errorf("expected lastDispatchAt preserved across update-subscribe")
	}
}

func TestUnknownSubscriberUpdatePrefsFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.UpdatePrefs("missing", PrefsPatch{})
	if err != domain.ErrBadRequest {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestWithinRadiusZeroNeverMatches(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("a", domain.Location{Lat: 1, Lng: 1, RadiusKm: 0}, domain.Prefs{Enabled: true})

	matches := r.WithinRadius(domain.Location{Lat: 1, Lng: 1})
	if len(matches) != 0 {
		t.Errorf("expected zero-radius subscriber never to match, got %d matches", len(matches))
	}
}

func TestWithinRadiusMatchesNearby(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("near", domain.Location{Lat: 40.71, Lng: -74.00, RadiusKm: 50}, domain.Prefs{Enabled: true})
	r.Subscribe("far", domain.Location{Lat: 51.51, Lng: -0.13, RadiusKm: 50}, domain.Prefs{Enabled: true})

	matches := r.WithinRadius(domain.Location{Lat: 40.71, Lng: -74.01})
	if len(matches) != 1 || matches[0].ID != "near" {
		t.Errorf("expected only 'near' to match, got %v", matches)
	}
}

func TestUpdatePrefsMergesWithoutClobbering(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("a", domain.Location{Lat: 0, Lng: 0, RadiusKm: 1}, domain.Prefs{
		AQIThresholds: domain.AQIThresholds{Warning: 100, Critical: 200, Emergency: 300},
		Channels:      []domain.Channel{domain.ChannelPush},
		Enabled:       true,
	})

	enabled := false
	sub, err := r.UpdatePrefs("a", PrefsPatch{Enabled: &enabled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Prefs.Enabled {
		t.Errorf("expected enabled=false after patch")
	}
	if sub.Prefs.AQIThresholds.Warning != 100 {
		t.Errorf("expected unrelated fields preserved, got warning=%d", sub.Prefs.AQIThresholds.Warning)
	}
}
