// Package events fans enrollment changes out to connected websocket clients.
package events

import (
	"context"

	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/models"
)

const (
	TypeEnrolled  = "enrollment.created"
	TypeDropped   = "enrollment.dropped"
	TypeProgress  = "enrollment.progress"
	TypeCompleted = "enrollment.completed"
)

const (
	broadcastBuffer  = 256
	subscriberBuffer = 16
)

type Event struct {
	Type       string            `json:"type"`
	Enrollment models.Enrollment `json:"enrollment"`
}

// Subscriber receives the events its requester may see: admins see all of
// them, students only their own.
type Subscriber struct {
	Requester models.Requester
	send      chan Event
}

func (s *Subscriber) Events() <-chan Event {
	return s.send
}

func (s *Subscriber) wants(e Event) bool {
	return s.Requester.IsAdmin() || e.Enrollment.StudentID == s.Requester.ID
}

type Hub struct {
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan Event
	done       chan struct{}
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan Event, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log.With("component", "events"),
	}
}

// Run owns the subscriber set until ctx is cancelled. Slow subscribers are
// disconnected rather than allowed to stall the others.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	clients := make(map[*Subscriber]struct{})
	for {
		select {
		case <-ctx.Done():
			for s := range clients {
				close(s.send)
			}
			return
		case s := <-h.register:
			clients[s] = struct{}{}
			h.log.Debug("subscriber registered", "requester_id", s.Requester.ID)
		case s := <-h.unregister:
			if _, ok := clients[s]; ok {
				delete(clients, s)
				close(s.send)
				h.log.Debug("subscriber unregistered", "requester_id", s.Requester.ID)
			}
		case e := <-h.broadcast:
			for s := range clients {
				if !s.wants(e) {
					continue
				}
				select {
				case s.send <- e:
				default:
					h.log.Warn("subscriber too slow, disconnecting", "requester_id", s.Requester.ID)
					delete(clients, s)
					close(s.send)
				}
			}
		}
	}
}

// Subscribe returns false once the hub has stopped.
func (h *Hub) Subscribe(req models.Requester) (*Subscriber, bool) {
	s := &Subscriber{Requester: req, send: make(chan Event, subscriberBuffer)}
	select {
	case h.register <- s:
		return s, true
	case <-h.done:
		return nil, false
	}
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish never blocks. Events are dropped when the buffer is full.
func (h *Hub) Publish(eventType string, e models.Enrollment) {
	select {
	case h.broadcast <- Event{Type: eventType, Enrollment: e}:
	default:
		h.log.Warn("event buffer full, dropping", "type", eventType, "enrollment_id", e.ID)
	}
}
