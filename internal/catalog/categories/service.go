package categories

import (
	"context"
	"database/sql"
	"strings"

	"pustaka-backend/internal/platform/httpx"
	"pustaka-backend/internal/platform/ident"
)

type Service struct {
	store *Store
	id    ident.IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), id: ident.ULIDGen{}}
}

func (s *Service) List(ctx context.Context) ([]CategoryResponse, error) {
	cs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(cs))
	for i := range cs {
		out = append(out, toCategoryResponse(&cs[i]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*CategoryResponse, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, httpx.ErrNotFound("category not found")
	}
	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req UpsertCategoryRequest) (*CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, httpx.ErrInvalid("name is required")
	}

	exists, err := s.store.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, httpx.ErrConflict("Kategori dengan nama ini sudah ada")
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	c := &Category{ID: id, Name: name}
	if req.Description != nil && *req.Description != "" {
		c.Description = sql.NullString{String: *req.Description, Valid: true}
	}

	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}
	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertCategoryRequest) (*CategoryResponse, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, httpx.ErrNotFound("category not found")
	}

	c.Name = strings.TrimSpace(req.Name)
	if req.Description != nil && *req.Description != "" {
		c.Description = sql.NullString{String: *req.Description, Valid: true}
	} else {
		c.Description = sql.NullString{}
	}

	n, err := s.store.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, httpx.ErrNotFound("category not found")
	}
	resp := toCategoryResponse(c)
	return &resp, nil
}

// Delete refuses while any book still points at the category.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return httpx.ErrNotFound("category not found")
	}
	if c.BookCount > 0 {
		return httpx.ErrConflict("Kategori masih digunakan oleh buku")
	}

	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return httpx.ErrNotFound("category not found")
	}
	return nil
}
