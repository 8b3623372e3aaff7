// Package pushbus implements the Push Bus: a room-keyed pub/sub
// primitive fanning out events to connected realtime clients with
// bounded per-client backpressure.
package pushbus

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/airwatch/aqcore/internal/metrics"
)

// DefaultOutboxCapacity is the per-client bounded outbox size. When
// full, the oldest queued event is dropped (spec.md §4.10).
const DefaultOutboxCapacity = 64

// Event is a single published message; payload is opaque to the bus.
type Event struct {
	Room    string
	Payload any
}

// client is one connected subscriber's bounded outbox plus room
// membership.
type client struct {
	mu      sync.Mutex
	outbox  []Event
	cap     int
	rooms   map[string]bool
	drops   int
	deliver chan struct{} // wake-up signal for the client's drain goroutine
}

func newClient(capacity int) *client {
	return &client{
		cap:     capacity,
		rooms:   make(map[string]bool),
		deliver: make(chan struct{}, 1),
	}
}

// Bus is the Push Bus. Publish never blocks the caller: a slow or dead
// client has the oldest events dropped from the head of its own outbox
// rather than stalling the publisher, and events delivered to a single
// client preserve publish order.
type Bus struct {
	mu            sync.RWMutex
	clients       map[string]*client
	roomMembers   map[string]map[string]bool
	outboxCapacity int
}

// New builds a Bus with the given per-client outbox capacity. A
// capacity <= 0 uses DefaultOutboxCapacity.
func New(outboxCapacity int) *Bus {
	if outboxCapacity <= 0 {
		outboxCapacity = DefaultOutboxCapacity
	}
	return &Bus{
		clients:        make(map[string]*client),
		roomMembers:    make(map[string]map[string]bool),
		outboxCapacity: outboxCapacity,
	}
}

// Join adds clientID to room, registering the client if it is new.
func (b *Bus) Join(clientID, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.clients[clientID]
	if !ok {
		c = newClient(b.outboxCapacity)
		b.clients[clientID] = c
		go b.drain(clientID, c)
	}
	c.mu.Lock()
	c.rooms[room] = true
	c.mu.Unlock()

	members, ok := b.roomMembers[room]
	if !ok {
		members = make(map[string]bool)
		b.roomMembers[room] = members
	}
	members[clientID] = true
}

// Leave removes clientID from room. If clientID is left in no rooms it
// is fully deregistered.
func (b *Bus) Leave(clientID, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if members, ok := b.roomMembers[room]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(b.roomMembers, room)
		}
	}

	c, ok := b.clients[clientID]
	if !ok {
		return
	}
	c.mu.Lock()
	delete(c.rooms, room)
	empty := len(c.rooms) == 0
	c.mu.Unlock()

	if empty {
		close(c.deliver)
		delete(b.clients, clientID)
	}
}

// Publish fans event out to every client joined to room. Publish
// itself never blocks: a full outbox drops its oldest queued event
// before enqueuing the new one.
func (b *Bus) Publish(room string, payload any) {
	b.mu.RLock()
	members := b.roomMembers[room]
	targets := make([]*client, 0, len(members))
	for id := range members {
		if c, ok := b.clients[id]; ok {
			targets = append(targets, c)
		}
	}
	b.mu.RUnlock()

	event := Event{Room: room, Payload: payload}
	for _, c := range targets {
		c.enqueue(event)
	}
}

// enqueue appends event to the outbox, dropping the oldest entry first
// if the outbox is already at capacity, then signals the drain
// goroutine without blocking the publisher.
func (c *client) enqueue(event Event) {
	c.mu.Lock()
	if len(c.outbox) >= c.cap {
		c.outbox = c.outbox[1:]
		c.drops++
		metrics.PushBusDrops.Inc()
		log.Warn().Int("drops", c.drops).Msg("push bus outbox full, dropping oldest event")
	}
	c.outbox = append(c.outbox, event)
	c.mu.Unlock()

	select {
	case c.deliver <- struct{}{}:
	default:
		// a signal is already pending; drain will see the new tail
	}
}

// drain is the per-client goroutine that consumes the outbox's wake-up
// signals until Leave closes them. It does not pop or deliver events;
// callers take them in publish order through PopAll (WebSocketAdapter
// in adapter.go does so from its write loop).
func (b *Bus) drain(clientID string, c *client) {
	for range c.deliver {
		// Wake-up only; actual delivery happens through PopAll, which
		// a websocket adapter goroutine calls in its own write loop.
	}
}

// PopAll atomically drains and returns every currently queued event for
// clientID, in publish order. Intended for adapter write loops.
func (b *Bus) PopAll(clientID string) []Event {
	b.mu.RLock()
	c, ok := b.clients[clientID]
	b.mu.RUnlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.outbox
	c.outbox = nil
	return out
}

// Drops reports how many events have been dropped for clientID due to
// outbox overflow.
func (b *Bus) Drops(clientID string) int {
	b.mu.RLock()
	c, ok := b.clients[clientID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drops
}
