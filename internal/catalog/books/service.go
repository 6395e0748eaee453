package books

import (
	"context"
	"database/sql"
	"strings"

	"pustaka-backend/internal/platform/httpx"
	"pustaka-backend/internal/platform/ident"
)

type Service struct {
	store BookStore
	id    ident.IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), id: ident.ULIDGen{}}
}

func (s *Service) Get(ctx context.Context, id string) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, httpx.ErrNotFound("book not found")
	}
	resp := toBookResponse(b)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]BookResponse, error) {
	all, err := s.store.List(ctx, f.CategoryID)
	if err != nil {
		return nil, err
	}
	filtered := FilterBooks(all, strings.TrimSpace(f.Search))

	if f.Limit > 0 {
		lo := f.Offset
		if lo > len(filtered) {
			lo = len(filtered)
		}
		hi := lo + f.Limit
		if hi > len(filtered) {
			hi = len(filtered)
		}
		filtered = filtered[lo:hi]
	}

	out := make([]BookResponse, 0, len(filtered))
	for i := range filtered {
		out = append(out, toBookResponse(&filtered[i]))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req UpsertBookRequest) (*BookResponse, error) {
	if req.TotalStock < 0 {
		return nil, httpx.ErrInvalid("total_stock must be >= 0")
	}
	id, err := s.id.New()
	if err != nil {
		return nil, err
	}

	b := &Book{
		ID:             id,
		TotalStock:     req.TotalStock,
		AvailableStock: req.TotalStock,
	}
	applyUpsert(b, req)

	if err := s.store.Insert(ctx, b); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update recomputes available_stock so copies currently out on loan
// stay accounted for: borrowed = old total - old available, and the new
// total may not fall below it. The recompute runs against the locked
// row, a loan approval committing in parallel cannot be overwritten.
func (s *Service) Update(ctx context.Context, id string, req UpsertBookRequest) (*BookResponse, error) {
	if req.TotalStock < 0 {
		return nil, httpx.ErrInvalid("total_stock must be >= 0")
	}

	err := s.store.UpdateLocked(ctx, id, func(b *Book) error {
		borrowed := b.TotalStock - b.AvailableStock
		if req.TotalStock < borrowed {
			return httpx.ErrConflict("total_stock is below the number of copies on loan")
		}
		b.TotalStock = req.TotalStock
		b.AvailableStock = req.TotalStock - borrowed
		applyUpsert(b, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	active, err := s.store.CountActiveLoans(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return httpx.ErrConflict("Buku masih memiliki peminjaman aktif")
	}

	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return httpx.ErrNotFound("book not found")
	}
	return nil
}

func applyUpsert(b *Book, req UpsertBookRequest) {
	b.Title = strings.TrimSpace(req.Title)
	b.Author = strings.TrimSpace(req.Author)

	b.Publisher = nullString(req.Publisher)
	b.ISBN = nullString(req.ISBN)
	b.Synopsis = nullString(req.Synopsis)
	b.CoverURL = nullString(req.CoverURL)
	b.CategoryID = nullString(req.CategoryID)

	if req.Year != nil && *req.Year > 0 {
		b.Year = sql.NullInt64{Int64: int64(*req.Year), Valid: true}
	} else {
		b.Year = sql.NullInt64{}
	}
}

func nullString(v *string) sql.NullString {
	if v != nil && *v != "" {
		return sql.NullString{String: *v, Valid: true}
	}
	return sql.NullString{}
}
