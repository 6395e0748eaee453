package messaging

import (
	"database/sql"
	"time"
)

type MessageType string

const (
	TypeText     MessageType = "TEXT"
	TypeBookCard MessageType = "BOOK_CARD"
)

func (t MessageType) Valid() bool { return t == TypeText || t == TypeBookCard }

// Conversation is one row of the conversations table: an unordered user
// pair. Last message and unread count are derived per reader.
type Conversation struct {
	ID        string
	UserAID   string
	UserBID   string
	CreatedAt time.Time
}

// Other returns the participant that is not the reader.
func (c *Conversation) Other(readerID string) string {
	if c.UserAID == readerID {
		return c.UserBID
	}
	return c.UserAID
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	MessageType    MessageType
	IsEdited       bool
	IsRead         bool
	CreatedAt      time.Time
}

// ConversationSummary is the list row: conversation plus the derived
// last-message / unread view for one reader.
type ConversationSummary struct {
	Conversation
	OtherUserID   string
	OtherUserName string
	OtherAvatar   sql.NullString
	LastMessage   sql.NullString
	LastMessageAt sql.NullTime
	UnreadCount   int
}
