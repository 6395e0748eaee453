package messaging

import (
	"context"
	"database/sql"
	"strings"

	"pustaka-backend/internal/platform/httpx"
	"pustaka-backend/internal/platform/ident"
)

const maxContentLen = 2000

type Service struct {
	store MessageStore
	hub   *Hub
	id    ident.IDGen
}

func NewService(db *sql.DB, hub *Hub) *Service {
	return &Service{store: NewStore(db), hub: hub, id: ident.ULIDGen{}}
}

func (s *Service) Conversations(ctx context.Context, readerID string) ([]ConversationResponse, error) {
	cs, err := s.store.ListConversations(ctx, readerID)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationResponse, 0, len(cs))
	for i := range cs {
		out = append(out, toConversationResponse(&cs[i]))
	}
	return out, nil
}

func (s *Service) Messages(ctx context.Context, readerID, conversationID string) ([]MessageResponse, error) {
	conv, err := s.requireParticipant(ctx, readerID, conversationID)
	if err != nil {
		return nil, err
	}

	ms, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	out := make([]MessageResponse, 0, len(ms))
	for i := range ms {
		out = append(out, toMessageResponse(&ms[i]))
	}
	return out, nil
}

// Send validates content before anything is written: blank messages
// never reach the store or the hub.
func (s *Service) Send(ctx context.Context, senderID string, req SendMessageRequest) (*MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, httpx.ErrInvalid("Pesan tidak boleh kosong")
	}
	if len(content) > maxContentLen {
		return nil, httpx.ErrInvalid("Pesan terlalu panjang")
	}
	if req.RecipientID == senderID {
		return nil, httpx.ErrInvalid("cannot message yourself")
	}

	msgType := TypeText
	if req.MessageType != nil && *req.MessageType != "" {
		msgType = MessageType(*req.MessageType)
		if !msgType.Valid() {
			return nil, httpx.ErrInvalid("message_type must be TEXT or BOOK_CARD")
		}
	}

	conv, err := s.store.FindConversationByPair(ctx, senderID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	created := false
	if conv == nil {
		id, err := s.id.New()
		if err != nil {
			return nil, err
		}
		conv = &Conversation{ID: id, UserAID: senderID, UserBID: req.RecipientID}
		if err := s.store.InsertConversation(ctx, conv); err != nil {
			return nil, err
		}
		created = true
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	m := &Message{
		ID:             id,
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    msgType,
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		return nil, err
	}

	stored, err := s.store.GetMessage(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		m = stored
	}

	participants := []string{conv.UserAID, conv.UserBID}
	if created {
		s.hub.Publish(participants, EventConversation, conv.ID)
	}
	s.hub.Publish(participants, EventMessage, conv.ID)

	resp := toMessageResponse(m)
	return &resp, nil
}

// Edit is sender-only and never optimistic: the stored row changes
// first, then subscribers hear about it.
func (s *Service) Edit(ctx context.Context, senderID, messageID string, req EditMessageRequest) (*MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, httpx.ErrInvalid("Pesan tidak boleh kosong")
	}

	m, conv, err := s.requireSender(ctx, senderID, messageID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateMessageContent(ctx, m.ID, content); err != nil {
		return nil, err
	}
	m.Content = content
	m.IsEdited = true

	s.hub.Publish([]string{conv.UserAID, conv.UserBID}, EventMessage, conv.ID)
	resp := toMessageResponse(m)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, senderID, messageID string) error {
	m, conv, err := s.requireSender(ctx, senderID, messageID)
	if err != nil {
		return err
	}

	if _, err := s.store.DeleteMessage(ctx, m.ID); err != nil {
		return err
	}
	s.hub.Publish([]string{conv.UserAID, conv.UserBID}, EventMessage, conv.ID)
	return nil
}

// MarkAllRead clears the reader's unread counter for one conversation.
func (s *Service) MarkAllRead(ctx context.Context, readerID, conversationID string) error {
	conv, err := s.requireParticipant(ctx, readerID, conversationID)
	if err != nil {
		return err
	}

	n, err := s.store.MarkAllRead(ctx, conv.ID, readerID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.hub.Publish([]string{conv.UserAID, conv.UserBID}, EventRead, conv.ID)
	}
	return nil
}

func (s *Service) UnreadCount(ctx context.Context, readerID string) (int, error) {
	return s.store.CountUnread(ctx, readerID)
}

func (s *Service) requireParticipant(ctx context.Context, userID, conversationID string) (*Conversation, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, httpx.ErrNotFound("conversation not found")
	}
	if !conv.HasParticipant(userID) {
		return nil, httpx.ErrForbidden("not a participant")
	}
	return conv, nil
}

func (s *Service) requireSender(ctx context.Context, senderID, messageID string) (*Message, *Conversation, error) {
	m, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, httpx.ErrNotFound("message not found")
	}
	if m.SenderID != senderID {
		return nil, nil, httpx.ErrForbidden("only the sender may change a message")
	}
	conv, err := s.store.GetConversation(ctx, m.ConversationID)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, httpx.ErrNotFound("conversation not found")
	}
	return m, conv, nil
}
