package client

import (
	"sync"

	"pustaka-backend/internal/messaging"
)

// Inbox is the local copy of the messaging state a view renders from.
// Updates are replace-on-update: each fetch result overwrites the
// whole list for its key, never merges into it. Applying the same
// response twice is therefore a no-op, and a missed event is repaired
// by the next full fetch.
type Inbox struct {
	mu            sync.RWMutex
	conversations []messaging.ConversationResponse
	messages      map[string][]messaging.MessageResponse
}

func NewInbox() *Inbox {
	return &Inbox{messages: make(map[string][]messaging.MessageResponse)}
}

func (b *Inbox) ReplaceConversations(list []messaging.ConversationResponse) {
	b.mu.Lock()
	b.conversations = append([]messaging.ConversationResponse(nil), list...)
	b.mu.Unlock()
}

func (b *Inbox) ReplaceMessages(conversationID string, list []messaging.MessageResponse) {
	b.mu.Lock()
	b.messages[conversationID] = append([]messaging.MessageResponse(nil), list...)
	b.mu.Unlock()
}

func (b *Inbox) Conversations() []messaging.ConversationResponse {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]messaging.ConversationResponse(nil), b.conversations...)
}

func (b *Inbox) Messages(conversationID string) []messaging.MessageResponse {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]messaging.MessageResponse(nil), b.messages[conversationID]...)
}

func (b *Inbox) TotalUnread() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, c := range b.conversations {
		n += c.UnreadCount
	}
	return n
}
