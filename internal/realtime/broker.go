// Package realtime implements EcoTrack's notification broker: a registry of
// live websocket connections and best-effort fan-out of notification events
// to them. The broker only transports notifications; creating and persisting
// them is the notifications plugin's job.
//
// Delivery is fire-and-forget to currently-connected clients. Nothing is
// queued or retried for clients that are offline or fall behind.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// EventNewNotification is the only event type carried on the socket.
const EventNewNotification = "new_notification"

// sendBufferSize is the per-connection outbound queue. A publish to a
// connection whose buffer is full closes that connection instead of
// blocking the publisher.
const sendBufferSize = 64

// Frame is the JSON message written to the socket for each delivery.
type Frame struct {
	Event        string `json:"event"`
	Notification any    `json:"notification"`
}

// connection is one live socket in the registry. The send channel is
// serviced by a single writer goroutine (writePump), which keeps delivery
// per connection in publish order.
type connection struct {
	id     uint64
	userID string // empty = anonymous, receives broadcasts only
	send   chan []byte
}

// Broker maintains the registry of live connections and fans notification
// events out to them. Connection ids increase monotonically and are never
// reused; removal frees the slot in the registry map.
//
// The registry is mutated from two independent sources -- connection
// lifecycle events and Publish calls from request handlers -- so every
// access goes through the mutex.
type Broker struct {
	mu     sync.Mutex
	nextID uint64
	conns  map[uint64]*connection
	closed bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		conns: make(map[uint64]*connection),
	}
}

// add registers a new connection and returns it. userID may be empty for
// anonymous connections.
func (b *Broker) add(userID string) *connection {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.nextID++
	c := &connection{
		id:     b.nextID,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
	b.conns[c.id] = c

	slog.Debug("realtime connection registered",
		slog.Uint64("connection_id", c.id),
		slog.String("user_id", userID),
	)
	return c
}

// remove unregisters a connection and closes its send channel. Exactly-once:
// the map membership check makes a second remove for the same id a no-op,
// whether it comes from a read error, an explicit close, or shutdown.
func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(id)
}

// removeLocked is remove without taking the mutex. Callers must hold b.mu.
func (b *Broker) removeLocked(id uint64) {
	c, ok := b.conns[id]
	if !ok {
		return
	}
	delete(b.conns, id)
	close(c.send)

	slog.Debug("realtime connection removed",
		slog.Uint64("connection_id", id),
	)
}

// Publish delivers a notification to connected clients. A nil userID means
// broadcast to every live connection; otherwise only connections bound to
// that user receive it. If no matching connection is live, the event is
// dropped silently.
//
// Publish never blocks on a slow client: a connection whose send buffer is
// full is closed and removed instead, so one stalled socket cannot delay
// delivery to the rest.
func (b *Broker) Publish(userID *string, notification any) {
	data, err := json.Marshal(Frame{
		Event:        EventNewNotification,
		Notification: notification,
	})
	if err != nil {
		slog.Error("failed to marshal notification frame", slog.Any("error", err))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, c := range b.conns {
		if userID != nil && c.userID != *userID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Buffer full: the client stopped reading. Drop it.
			slog.Warn("realtime client too slow, dropping connection",
				slog.Uint64("connection_id", id),
			)
			b.removeLocked(id)
		}
	}
}

// ConnectionCount returns the number of live connections. Used by the
// health endpoint and tests.
func (b *Broker) ConnectionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

// Shutdown removes every live connection and refuses new registrations.
// Each writer goroutine observes its closed send channel and sends a close
// frame to its client.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id := range b.conns {
		b.removeLocked(id)
	}
}
