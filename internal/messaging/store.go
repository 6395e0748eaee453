package messaging

import (
	"context"
	"database/sql"
	"errors"
)

type MessageStore interface {
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	FindConversationByPair(ctx context.Context, userA, userB string) (*Conversation, error)
	InsertConversation(ctx context.Context, c *Conversation) error
	ListConversations(ctx context.Context, readerID string) ([]ConversationSummary, error)
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	InsertMessage(ctx context.Context, m *Message) error
	UpdateMessageContent(ctx context.Context, id, content string) (int64, error)
	DeleteMessage(ctx context.Context, id string) (int64, error)
	MarkAllRead(ctx context.Context, conversationID, readerID string) (int64, error)
	CountUnread(ctx context.Context, readerID string) (int, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) MessageStore { return &Store{db: db} }

func (s *Store) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	const q = `SELECT id, user_a_id, user_b_id, created_at FROM conversations WHERE id = ? LIMIT 1`
	var c Conversation
	err := s.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindConversationByPair looks the pair up in both orders.
func (s *Store) FindConversationByPair(ctx context.Context, userA, userB string) (*Conversation, error) {
	const q = `
SELECT id, user_a_id, user_b_id, created_at FROM conversations
WHERE (user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)
LIMIT 1`
	var c Conversation
	err := s.db.QueryRowContext(ctx, q, userA, userB, userB, userA).
		Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) InsertConversation(ctx context.Context, c *Conversation) error {
	const q = `INSERT INTO conversations (id, user_a_id, user_b_id, created_at) VALUES (?, ?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.UserAID, c.UserBID)
	return err
}

// ListConversations builds the inbox rows for one reader: the other
// participant, the latest message and the unread counter, newest first.
func (s *Store) ListConversations(ctx context.Context, readerID string) ([]ConversationSummary, error) {
	const q = `
SELECT
	c.id, c.user_a_id, c.user_b_id, c.created_at,
	u.id, u.name, u.avatar_url,
	(SELECT m.content FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1),
	(SELECT m.created_at FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1),
	(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.sender_id <> ? AND m.is_read = 0)
FROM conversations c
JOIN users u ON u.id = IF(c.user_a_id = ?, c.user_b_id, c.user_a_id)
WHERE c.user_a_id = ? OR c.user_b_id = ?
ORDER BY COALESCE(
	(SELECT m.created_at FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1),
	c.created_at) DESC`

	rows, err := s.db.QueryContext(ctx, q, readerID, readerID, readerID, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConversationSummary
	for rows.Next() {
		var cs ConversationSummary
		if err := rows.Scan(
			&cs.ID, &cs.UserAID, &cs.UserBID, &cs.CreatedAt,
			&cs.OtherUserID, &cs.OtherUserName, &cs.OtherAvatar,
			&cs.LastMessage, &cs.LastMessageAt, &cs.UnreadCount,
		); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	const q = `
SELECT id, conversation_id, sender_id, content, message_type, is_edited, is_read, created_at
FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, q, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
			&m.MessageType, &m.IsEdited, &m.IsRead, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetMessage(ctx context.Context, id string) (*Message, error) {
	const q = `
SELECT id, conversation_id, sender_id, content, message_type, is_edited, is_read, created_at
FROM messages WHERE id = ? LIMIT 1`
	var m Message
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
		&m.MessageType, &m.IsEdited, &m.IsRead, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) InsertMessage(ctx context.Context, m *Message) error {
	const q = `
INSERT INTO messages (id, conversation_id, sender_id, content, message_type, is_edited, is_read, created_at)
VALUES (?, ?, ?, ?, ?, 0, 0, NOW(6))`
	_, err := s.db.ExecContext(ctx, q, m.ID, m.ConversationID, m.SenderID, m.Content, string(m.MessageType))
	return err
}

func (s *Store) UpdateMessageContent(ctx context.Context, id, content string) (int64, error) {
	const q = `UPDATE messages SET content = ?, is_edited = 1 WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, content, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteMessage(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM messages WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) MarkAllRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	const q = `UPDATE messages SET is_read = 1 WHERE conversation_id = ? AND sender_id <> ? AND is_read = 0`
	res, err := s.db.ExecContext(ctx, q, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountUnread(ctx context.Context, readerID string) (int, error) {
	const q = `
SELECT COUNT(*)
FROM messages m
JOIN conversations c ON c.id = m.conversation_id
WHERE (c.user_a_id = ? OR c.user_b_id = ?) AND m.sender_id <> ? AND m.is_read = 0`
	var n int
	if err := s.db.QueryRowContext(ctx, q, readerID, readerID, readerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
