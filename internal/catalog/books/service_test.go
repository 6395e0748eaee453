package books

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pustaka-backend/internal/platform/httpx"
)

type fakeBookStore struct {
	books map[string]*Book
}

func newFakeBookStore(bs ...*Book) *fakeBookStore {
	f := &fakeBookStore{books: map[string]*Book{}}
	for _, b := range bs {
		f.books[b.ID] = b
	}
	return f
}

func (f *fakeBookStore) GetByID(_ context.Context, id string) (*Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookStore) List(_ context.Context, categoryID string) ([]Book, error) {
	var out []Book
	for _, b := range f.books {
		if categoryID == "" || (b.CategoryID.Valid && b.CategoryID.String == categoryID) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookStore) Insert(_ context.Context, b *Book) error {
	cp := *b
	f.books[b.ID] = &cp
	return nil
}

// UpdateLocked hands apply the current row, the way the SQL store does
// under FOR UPDATE.
func (f *fakeBookStore) UpdateLocked(_ context.Context, id string, apply func(b *Book) error) error {
	b, ok := f.books[id]
	if !ok {
		return httpx.ErrNotFound("book not found")
	}
	cp := *b
	if err := apply(&cp); err != nil {
		return err
	}
	f.books[id] = &cp
	return nil
}

func (f *fakeBookStore) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := f.books[id]; !ok {
		return 0, nil
	}
	delete(f.books, id)
	return 1, nil
}

func (f *fakeBookStore) CountActiveLoans(context.Context, string) (int, error) { return 0, nil }

type seqIDGen struct{ n int }

func (g seqIDGen) New() (string, error) {
	return fmt.Sprintf("id-%d", g.n), nil
}

func upsertReq(title string, total int) UpsertBookRequest {
	return UpsertBookRequest{Title: title, Author: "Penulis", TotalStock: total}
}

// The recompute must use the counters as they are at write time, not as
// they were at page-load time: a copy borrowed in between stays
// borrowed.
func Test_Update_PreservesBorrowedCopies(t *testing.T) {
	// total 5, one copy out on loan
	store := newFakeBookStore(&Book{ID: "b1", Title: "Laskar Pelangi", Author: "Penulis", TotalStock: 5, AvailableStock: 4})
	svc := &Service{store: store, id: seqIDGen{}}

	res, err := svc.Update(context.Background(), "b1", upsertReq("Laskar Pelangi", 5))
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalStock)
	assert.Equal(t, 4, res.AvailableStock, "borrowed copy must not be resurrected")

	// growing the collection keeps the same borrowed count
	res, err = svc.Update(context.Background(), "b1", upsertReq("Laskar Pelangi", 7))
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalStock)
	assert.Equal(t, 6, res.AvailableStock)
}

func Test_Update_RejectsTotalBelowBorrowed(t *testing.T) {
	// three copies, all out on loan
	store := newFakeBookStore(&Book{ID: "b1", Title: "Bumi", Author: "Penulis", TotalStock: 3, AvailableStock: 0})
	svc := &Service{store: store, id: seqIDGen{}}

	_, err := svc.Update(context.Background(), "b1", upsertReq("Bumi", 2))
	var api *httpx.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, httpx.CodeConflict, api.Code)

	// nothing written
	b, _ := store.GetByID(context.Background(), "b1")
	assert.Equal(t, 3, b.TotalStock)
	assert.Equal(t, 0, b.AvailableStock)
}

func Test_Update_UnknownBook(t *testing.T) {
	svc := &Service{store: newFakeBookStore(), id: seqIDGen{}}

	_, err := svc.Update(context.Background(), "missing", upsertReq("Apa Saja", 1))
	var api *httpx.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, httpx.CodeNotFound, api.Code)
}
