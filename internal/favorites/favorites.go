// Package favorites is the student's bookmark list: check, add, remove.
package favorites

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/httpx"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND book_id = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, userID, bookID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Add(ctx context.Context, userID, bookID string) error {
	// INSERT IGNORE keeps add idempotent under double-clicks
	const q = `INSERT IGNORE INTO favorites (user_id, book_id, created_at) VALUES (?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q, userID, bookID)
	return err
}

func (s *Store) Remove(ctx context.Context, userID, bookID string) error {
	const q = `DELETE FROM favorites WHERE user_id = ? AND book_id = ?`
	_, err := s.db.ExecContext(ctx, q, userID, bookID)
	return err
}

func (s *Store) ListBookIDs(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT book_id FROM favorites WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type Handler struct{ store *Store }

func RegisterRoutes(r gin.IRoutes, store *Store) {
	h := &Handler{store: store}

	r.GET("/favorites", h.List)
	r.GET("/favorites/:book_id", h.Check)
	r.POST("/favorites/:book_id", h.Add)
	r.DELETE("/favorites/:book_id", h.Remove)
}

func (h *Handler) List(c *gin.Context) {
	ids, err := h.store.ListBookIDs(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httpx.Data(c, http.StatusOK, ids)
}

func (h *Handler) Check(c *gin.Context) {
	ok, err := h.store.Exists(c.Request.Context(), auth.UserID(c), c.Param("book_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"favorited": ok})
}

func (h *Handler) Add(c *gin.Context) {
	if err := h.store.Add(c.Request.Context(), auth.UserID(c), c.Param("book_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusCreated, gin.H{"favorited": true})
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.store.Remove(c.Request.Context(), auth.UserID(c), c.Param("book_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"favorited": false})
}
