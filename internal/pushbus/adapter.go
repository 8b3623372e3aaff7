package pushbus

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketAdapter drains a Bus client's outbox to a live websocket
// connection. It is the only place in this package that knows about
// transport; Bus itself stays transport-agnostic.
type WebSocketAdapter struct {
	bus      *Bus
	clientID string
	conn     *websocket.Conn
	interval time.Duration
	done     chan struct{}
}

// NewWebSocketAdapter wires a joined client's outbox to conn, polling
// every interval (default 50ms if <= 0).
func NewWebSocketAdapter(bus *Bus, clientID string, conn *websocket.Conn, interval time.Duration) *WebSocketAdapter {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &WebSocketAdapter{bus: bus, clientID: clientID, conn: conn, interval: interval, done: make(chan struct{})}
}

// Run blocks, writing queued events to the connection in publish order
// until Stop is called or a write fails.
func (a *WebSocketAdapter) Run() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			for _, event := range a.bus.PopAll(a.clientID) {
				raw, err := json.Marshal(event.Payload)
				if err != nil {
					log.Warn().Err(err).Str("client", a.clientID).Msg("push bus event marshal failed")
					continue
				}
				if err := a.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
					log.Warn().Err(err).Str("client", a.clientID).Msg("push bus websocket write failed")
					return
				}
			}
		}
	}
}

// Stop ends the adapter's write loop.
func (a *WebSocketAdapter) Stop() {
	close(a.done)
}
