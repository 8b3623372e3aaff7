package pushbus

import (
	"fmt"
	"testing"
)

// S6 from spec.md §8: a single slow subscriber with outbox=64 receives
// 200 publishes; exactly 64 (the most recent) are retained, 136 drops.
func TestBackpressureScenarioS6(t *testing.T) {
	bus := New(64)
	bus.Join("slow", "room-1")
	bus.Join("fast", "room-1")

	for i := 0; i < 200; i++ {
		bus.Publish("room-1", i)
	}

	slowEvents := bus.PopAll("slow")
	if len(slowEvents) != 64 {
		t.Fatalf("expected 64 retained events, got %d", len(slowEvents))
	}
	if got := slowEvents[0].Payload.(int); got != 136 {
		t.Errorf("expected oldest retained event to be 136 (200-64), got %d", got)
	}
	if got := slowEvents[63].Payload.(int); got != 199 {
		t.Errorf("expected newest retained event to be 199, got %d", got)
	}
	if bus.Drops("slow") != 136 {
		t.Errorf("expected 136 drops, got %d", bus.Drops("slow"))
	}

	fastEvents := bus.PopAll("fast")
	if len(fastEvents) != 200 {
		t.Fatalf("expected fast subscriber to receive all 200, got %d", len(fastEvents))
	}
	for i, e := range fastEvents {
		if e.Payload.(int) != i {
			t.Fatalf("fast subscriber out of order at %d: got %v", i, e.Payload)
		}
	}
}

func TestJoinLeaveIsolatesRooms(t *testing.T) {
	bus := New(8)
	bus.Join("a", "room-1")
	bus.Join("b", "room-2")

	bus.Publish("room-1", "hello")

	if len(bus.PopAll("a")) != 1 {
		t.Errorf("expected room-1 member to receive event")
	}
	if len(bus.PopAll("b")) != 0 {
		t.Errorf("expected room-2 member not to receive room-1 event")
	}
}

func TestLocationRoomStableForNearbyPoints(t *testing.T) {
	a := LocationRoom(40.7101, -74.0089)
	b := LocationRoom(40.7105, -74.0091)
	if a != b {
		t.Errorf("expected nearby points to share a room: %s vs %s", a, b)
	}
}

func TestQuantizedLocationRoomFormat(t *testing.T) {
	got := QuantizedLocationRoom(40.7101, -74.0089)
	want := fmt.Sprintf("loc:%.2f,%.2f", 40.71, -74.01)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
