package messaging

import (
	"sync"
)

// EventKind tells the subscriber which list to re-fetch.
type EventKind string

const (
	EventMessage      EventKind = "message"
	EventConversation EventKind = "conversation"
	EventRead         EventKind = "read"
)

// Event is one notification pushed to a participant. Seq is monotonic
// across the whole hub, so a consumer can drop anything older than the
// last sequence it applied and never go backwards.
type Event struct {
	Seq            uint64    `json:"seq"`
	Kind           EventKind `json:"kind"`
	ConversationID string    `json:"conversation_id"`
}

// Hub replaces the old fixed-interval polling: participants hold a
// long-lived subscription and get an event whenever one of their
// conversations changes. The event only says *what* changed; consumers
// re-fetch and replace their local copy wholesale, so a dropped event
// is repaired by the next one (or by the full re-fetch every reconnect
// starts with).
type Hub struct {
	mu   sync.Mutex
	seq  uint64
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

const subscriberBuffer = 16

// Subscribe registers a channel for one user. The returned cancel func
// must be called when the consumer goes away; it closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			if _, live := set[ch]; live {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish assigns the next sequence number and fans the event out to
// every subscription of the given users. Slow consumers lose events
// instead of blocking the sender.
func (h *Hub) Publish(userIDs []string, kind EventKind, conversationID string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	ev := Event{Seq: h.seq, Kind: kind, ConversationID: conversationID}

	for _, uid := range userIDs {
		for ch := range h.subs[uid] {
			select {
			case ch <- ev:
			default:
			}
		}
	}
	return ev.Seq
}

// Seq returns the last assigned sequence number.
func (h *Hub) Seq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seq
}
