package reviews

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pustaka-backend/internal/platform/httpx"
	"pustaka-backend/internal/platform/ident"
)

type CreateReviewRequest struct {
	BookID  string  `json:"book_id" binding:"required"`
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment,omitempty"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewResponse(r *Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		BookID:    r.BookID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
	if r.Comment.Valid {
		resp.Comment = &r.Comment.String
	}
	return resp
}

type Service struct {
	store *Store
	id    ident.IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), id: ident.ULIDGen{}}
}

func (s *Service) ListByBook(ctx context.Context, bookID string) ([]ReviewResponse, error) {
	rs, err := s.store.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewResponse, 0, len(rs))
	for i := range rs {
		out = append(out, toReviewResponse(&rs[i]))
	}
	return out, nil
}

// Create enforces one review per (user, book) and the loan gate.
func (s *Service) Create(ctx context.Context, userID string, req CreateReviewRequest) (*ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, httpx.ErrInvalid("rating must be between 1 and 5")
	}

	eligible, err := s.store.HasEligibleLoan(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, httpx.ErrForbidden("Anda belum pernah meminjam buku ini")
	}

	exists, err := s.store.GetByUserAndBook(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, httpx.ErrConflict("Anda sudah memberikan ulasan untuk buku ini")
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	r := &Review{ID: id, BookID: req.BookID, UserID: userID, Rating: req.Rating}
	if req.Comment != nil {
		if c := strings.TrimSpace(*req.Comment); c != "" {
			r.Comment = sql.NullString{String: c, Valid: true}
		}
	}

	if err := s.store.Insert(ctx, r); err != nil {
		return nil, err
	}
	if err := s.store.RefreshBookRating(ctx, req.BookID); err != nil {
		return nil, err
	}

	resp := toReviewResponse(r)
	return &resp, nil
}

// Delete removes a review; admins may remove anyone's.
func (s *Service) Delete(ctx context.Context, userID string, isAdmin bool, reviewID string) error {
	r, err := s.store.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if r == nil {
		return httpx.ErrNotFound("review not found")
	}
	if r.UserID != userID && !isAdmin {
		return httpx.ErrForbidden("not your review")
	}

	if _, err := s.store.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.store.RefreshBookRating(ctx, r.BookID)
}
