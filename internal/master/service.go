package master

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

func (s *Service) List(ctx context.Context, k Kind) ([]EntryResponse, error) {
	es, err := s.store.List(ctx, k)
	if err != nil {
		return nil, err
	}
	out := make([]EntryResponse, 0, len(es))
	for i := range es {
		out = append(out, toEntryResponse(&es[i]))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, k Kind, req UpsertRequest) (*EntryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, httpx.ErrInvalid("name is required")
	}

	exists, err := s.store.GetByName(ctx, k, name)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, httpx.ErrConflict("Nama sudah digunakan")
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	e := &Entry{ID: id, Name: name}
	if err := s.store.Insert(ctx, k, e); err != nil {
		return nil, err
	}
	resp := toEntryResponse(e)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, k Kind, id string, req UpsertRequest) (*EntryResponse, error) {
	e, err := s.store.GetByID(ctx, k, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, httpx.ErrNotFound("not found")
	}

	e.Name = strings.TrimSpace(req.Name)
	n, err := s.store.Update(ctx, k, e)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, httpx.ErrNotFound("not found")
	}
	resp := toEntryResponse(e)
	return &resp, nil
}

// Delete refuses while members still reference the entry, mirroring the
// disabled delete button on the admin page.
func (s *Service) Delete(ctx context.Context, k Kind, id string) error {
	e, err := s.store.GetByID(ctx, k, id)
	if err != nil {
		return err
	}
	if e == nil {
		return httpx.ErrNotFound("not found")
	}
	if !CanDelete(e.UsedBy) {
		return httpx.ErrConflict("Data masih digunakan oleh anggota")
	}

	n, err := s.store.Delete(ctx, k, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return httpx.ErrNotFound("not found")
	}
	return nil
}
