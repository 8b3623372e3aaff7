package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

type fakePipeline struct {
	calls     int32
	failFor   domain.Location
	mu        sync.Mutex
	processed []domain.Location
}

func (f *fakePipeline) RefreshLocation(ctx context.Context, loc domain.Location) error {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.processed = append(f.processed, loc)
	f.mu.Unlock()
	if loc == f.failFor {
		return errors.New("boom")
	}
	return nil
}

type fixedHotSource struct {
	locations []domain.Location
}

func (f fixedHotSource) HotLocations() []domain.Location { return f.locations }

func TestTickProcessesAllLocationsDespiteErrors(t *testing.T) {
	locs := []domain.Location{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}}
	pipeline := &fakePipeline{failFor: locs[1]}
	s := New(pipeline, fixedHotSource{locations: locs}, Config{Concurrency: 2})

	s.Tick(context.Background())

	if atomic.LoadInt32(&pipeline.calls) != int32(len(locs)) {
		t.Fatalf("expected all %d locations processed despite one failing, got %d calls", len(locs), pipeline.calls)
	}
}

func TestTickEmptyLocationsIsNoop(t *testing.T) {
	pipeline := &fakePipeline{}
	s := New(pipeline, fixedHotSource{}, Config{})
	s.Tick(context.Background())
	if pipeline.calls != 0 {
		t.Errorf("expected no calls for empty hot set, got %d", pipeline.calls)
	}
}

func TestHotLocationTrackerUnionsSubscribersAndTouched(t *testing.T) {
	subs := fixedHotSource{locations: []domain.Location{{Lat: 10, Lng: 10}}}
	tracker := NewHotLocationTracker(subLocAdapter{subs}, time.Minute)
	tracker.Touch(domain.Location{Lat: 20, Lng: 20})

	got := tracker.HotLocations()
	if len(got) != 2 {
		t.Fatalf("expected 2 hot locations, got %d: %v", len(got), got)
	}
}

func TestHotLocationTrackerExpiresTouched(t *testing.T) {
	subs := fixedHotSource{}
	tracker := NewHotLocationTracker(subLocAdapter{subs}, 10*time.Millisecond)
	tracker.Touch(domain.Location{Lat: 20, Lng: 20})

	time.Sleep(20 * time.Millisecond)
	got := tracker.HotLocations()
	if len(got) != 0 {
		t.Errorf("expected touched location to expire, got %v", got)
	}
}

type subLocAdapter struct {
	f fixedHotSource
}

func (s subLocAdapter) AllLocations() []domain.Location { return s.f.locations }
