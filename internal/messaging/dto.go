package messaging

import "time"

type SendMessageRequest struct {
	RecipientID string  `json:"recipient_id" binding:"required"`
	Content     string  `json:"content" binding:"required"`
	MessageType *string `json:"message_type,omitempty"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	MessageType    string    `json:"message_type"`
	IsEdited       bool      `json:"is_edited"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationResponse struct {
	ID            string     `json:"id"`
	OtherUserID   string     `json:"other_user_id"`
	OtherUserName string     `json:"other_user_name"`
	OtherAvatar   *string    `json:"other_avatar,omitempty"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	UnreadCount   int        `json:"unread_count"`
}

func toMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		MessageType:    string(m.MessageType),
		IsEdited:       m.IsEdited,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

func toConversationResponse(c *ConversationSummary) ConversationResponse {
	r := ConversationResponse{
		ID:            c.ID,
		OtherUserID:   c.OtherUserID,
		OtherUserName: c.OtherUserName,
		UnreadCount:   c.UnreadCount,
	}
	if c.OtherAvatar.Valid {
		r.OtherAvatar = &c.OtherAvatar.String
	}
	if c.LastMessage.Valid {
		r.LastMessage = &c.LastMessage.String
	}
	if c.LastMessageAt.Valid {
		r.LastMessageAt = &c.LastMessageAt.Time
	}
	return r
}
