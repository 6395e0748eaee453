// Package stats backs the two dashboards. One handler call, one
// response with every counter the page shows, instead of a fan-out of
// separate requests from the client.
package stats

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/httpx"
)

type AdminStats struct {
	TotalMembers  int `json:"total_members"`
	TotalBooks    int `json:"total_books"`
	TotalLoans    int `json:"total_loans"`
	PendingLoans  int `json:"pending_loans"`
	ActiveLoans   int `json:"active_loans"`
	OverdueLoans  int `json:"overdue_loans"`
	TotalReviews  int `json:"total_reviews"`
	TotalMessages int `json:"total_messages"`
}

type StudentStats struct {
	ActiveLoans    int `json:"active_loans"`
	PendingLoans   int `json:"pending_loans"`
	ReturnedLoans  int `json:"returned_loans"`
	Favorites      int `json:"favorites"`
	UnreadMessages int `json:"unread_messages"`
}

type Service struct{ db *sql.DB }

func NewService(db *sql.DB) *Service { return &Service{db: db} }

func (s *Service) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (s *Service) Admin(ctx context.Context) (*AdminStats, error) {
	var (
		st  AdminStats
		err error
	)
	steps := []struct {
		dst  *int
		q    string
		args []any
	}{
		{&st.TotalMembers, `SELECT COUNT(*) FROM users WHERE role = 'STUDENT'`, nil},
		{&st.TotalBooks, `SELECT COUNT(*) FROM books`, nil},
		{&st.TotalLoans, `SELECT COUNT(*) FROM loans`, nil},
		{&st.PendingLoans, `SELECT COUNT(*) FROM loans WHERE status = 'PENDING'`, nil},
		{&st.ActiveLoans, `SELECT COUNT(*) FROM loans WHERE status IN ('APPROVED', 'BORROWED', 'RETURNING')`, nil},
		{&st.OverdueLoans, `SELECT COUNT(*) FROM loans WHERE status = 'OVERDUE'`, nil},
		{&st.TotalReviews, `SELECT COUNT(*) FROM reviews`, nil},
		{&st.TotalMessages, `SELECT COUNT(*) FROM messages`, nil},
	}
	for _, step := range steps {
		if *step.dst, err = s.count(ctx, step.q, step.args...); err != nil {
			return nil, err
		}
	}
	return &st, nil
}

func (s *Service) Student(ctx context.Context, userID string) (*StudentStats, error) {
	var (
		st  StudentStats
		err error
	)
	steps := []struct {
		dst  *int
		q    string
		args []any
	}{
		{&st.ActiveLoans, `SELECT COUNT(*) FROM loans WHERE user_id = ? AND status IN ('APPROVED', 'BORROWED', 'OVERDUE', 'RETURNING')`, []any{userID}},
		{&st.PendingLoans, `SELECT COUNT(*) FROM loans WHERE user_id = ? AND status = 'PENDING'`, []any{userID}},
		{&st.ReturnedLoans, `SELECT COUNT(*) FROM loans WHERE user_id = ? AND status = 'RETURNED'`, []any{userID}},
		{&st.Favorites, `SELECT COUNT(*) FROM favorites WHERE user_id = ?`, []any{userID}},
		{&st.UnreadMessages, `
SELECT COUNT(*) FROM messages m
JOIN conversations c ON c.id = m.conversation_id
WHERE (c.user_a_id = ? OR c.user_b_id = ?) AND m.sender_id <> ? AND m.is_read = 0`, []any{userID, userID, userID}},
	}
	for _, step := range steps {
		if *step.dst, err = s.count(ctx, step.q, step.args...); err != nil {
			return nil, err
		}
	}
	return &st, nil
}

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/stats/admin", h.Admin)
	r.GET("/stats/student", h.Student)
}

func (h *Handler) Admin(c *gin.Context) {
	res, err := h.svc.Admin(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Student(c *gin.Context) {
	res, err := h.svc.Student(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}
