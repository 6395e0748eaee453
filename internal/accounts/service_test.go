package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pustaka-backend/internal/platform/httpx"
)

type fakeUserStore struct {
	byID      map[string]*User
	byEmail   map[string]*User
	inserted  []*User
	updated   []*User
	deleted   []string
	listCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]*User{}, byEmail: map[string]*User{}}
}

func (f *fakeUserStore) add(u *User) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*User, error) {
	return f.byID[id], nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserStore) List(_ context.Context, fl UserFilter) ([]User, error) {
	f.listCalls++
	var out []User
	for _, u := range f.byID {
		if fl.Role != "" && u.Role != fl.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Insert(_ context.Context, u *User) error {
	f.inserted = append(f.inserted, u)
	f.add(u)
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u *User) (int64, error) {
	f.updated = append(f.updated, u)
	return 1, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) (int64, error) {
	f.deleted = append(f.deleted, id)
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	return 1, nil
}

func newTestService(store UserStore) *Service {
	s := NewService(nil, []byte("test-secret"), 24*time.Hour)
	s.store = store
	return s
}

func Test_CreateMember_PasswordRule(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantCode httpx.Code
	}{
		{name: "five_chars_rejected", password: "abc12", wantCode: httpx.CodeInvalidArgument},
		{name: "empty_rejected", password: "", wantCode: httpx.CodeInvalidArgument},
		{name: "six_chars_accepted", password: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeUserStore()
			svc := newTestService(store)

			res, err := svc.CreateMember(context.Background(), CreateMemberRequest{
				Name:     "Budi",
				Email:    "budi@kampus.ac.id",
				Password: tt.password,
			})

			if tt.wantCode != "" {
				require.Error(t, err)
				api, ok := err.(*httpx.APIError)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, api.Code)
				// rejected before any write
				assert.Empty(t, store.inserted)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "STUDENT", res.Role)
			require.Len(t, store.inserted, 1)
			assert.NoError(t, bcrypt.CompareHashAndPassword(
				[]byte(store.inserted[0].PasswordHash), []byte(tt.password)))
		})
	}
}

func Test_UpdateMember_PasswordOptional(t *testing.T) {
	store := newFakeUserStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	store.add(&User{ID: "u1", Name: "Budi", Email: "budi@kampus.ac.id", PasswordHash: string(hash), Role: "STUDENT"})
	svc := newTestService(store)

	t.Run("empty_password_keeps_stored_hash", func(t *testing.T) {
		res, err := svc.UpdateMember(context.Background(), "u1", UpdateMemberRequest{
			Name:  "Budi Santoso",
			Email: "budi@kampus.ac.id",
		})
		require.NoError(t, err)
		assert.Equal(t, "Budi Santoso", res.Name)
		assert.Equal(t, string(hash), store.byID["u1"].PasswordHash)
	})

	t.Run("short_replacement_rejected", func(t *testing.T) {
		short := "abc"
		_, err := svc.UpdateMember(context.Background(), "u1", UpdateMemberRequest{
			Name:     "Budi",
			Email:    "budi@kampus.ac.id",
			Password: &short,
		})
		require.Error(t, err)
		api, ok := err.(*httpx.APIError)
		require.True(t, ok)
		assert.Equal(t, httpx.CodeInvalidArgument, api.Code)
	})

	t.Run("valid_replacement_rehashed", func(t *testing.T) {
		next := "rahasia2"
		_, err := svc.UpdateMember(context.Background(), "u1", UpdateMemberRequest{
			Name:     "Budi",
			Email:    "budi@kampus.ac.id",
			Password: &next,
		})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(store.byID["u1"].PasswordHash), []byte(next)))
	})
}

func Test_Login_WrongPassword(t *testing.T) {
	store := newFakeUserStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	store.add(&User{ID: "u1", Email: "budi@kampus.ac.id", PasswordHash: string(hash), Role: "STUDENT"})
	svc := newTestService(store)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "budi@kampus.ac.id", Password: "salah"})
	require.Error(t, err)
	api, ok := err.(*httpx.APIError)
	require.True(t, ok)
	assert.Equal(t, httpx.CodeUnauthorized, api.Code)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "budi@kampus.ac.id", Password: "rahasia1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "u1", res.User.ID)
}

func Test_AdminContacts_OnlyAdminsMinimalFields(t *testing.T) {
	store := newFakeUserStore()
	store.add(&User{ID: "a1", Name: "Bu Sari", Email: "sari@kampus.ac.id", Role: "ADMIN"})
	store.add(&User{ID: "a2", Name: "Pak Joko", Email: "joko@kampus.ac.id", Role: "ADMIN"})
	store.add(&User{ID: "u1", Name: "Budi", Email: "budi@kampus.ac.id", Role: "STUDENT"})
	svc := newTestService(store)

	res, err := svc.AdminContacts(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)

	seen := map[string]bool{}
	for _, c := range res {
		seen[c.ID] = true
		assert.NotEmpty(t, c.Name)
	}
	assert.True(t, seen["a1"])
	assert.True(t, seen["a2"])
	assert.False(t, seen["u1"], "students are not message targets here")
}
