package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pustaka-backend/internal/platform/httpx"
)

func Test_Client_LoginInstallsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "budi@sekolah.id", body["email"])
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"token":"tok-123","user":{"id":"u1","name":"Budi","email":"budi@sekolah.id","role":"STUDENT","created_at":"2025-01-01T00:00:00Z"}}}`))
		case "/api/v1/auth/me":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"id":"u1","name":"Budi","email":"budi@sekolah.id","role":"STUDENT","created_at":"2025-01-01T00:00:00Z"}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	user, err := c.Login(context.Background(), "budi@sekolah.id", "rahasia1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", user.Name)
	assert.True(t, c.Session().Authenticated())
	assert.False(t, c.Session().IsAdmin())

	// Subsequent calls carry the bearer token.
	_, err = c.Me(context.Background())
	require.NoError(t, err)

	c.Logout()
	assert.False(t, c.Session().Authenticated())
}

func Test_Client_DecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"CONFLICT","message":"Stok buku tidak tersedia"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateLoan(context.Background(), "b1", 7)
	require.Error(t, err)

	var api *httpx.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, httpx.CodeConflict, api.Code)
	assert.Equal(t, "Stok buku tidak tersedia", api.Message)
}

func Test_Client_MeClearsSessionOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Sesi berakhir"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Session().Set("expired-tok", nil)

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.False(t, c.Session().Authenticated())
}

func Test_SendMessage_RejectsBlankLocally(t *testing.T) {
	// No server: the blank guard must fire before any request.
	c := New("http://127.0.0.1:0")
	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := c.SendMessage(context.Background(), "u2", content)
		var api *httpx.APIError
		require.ErrorAs(t, err, &api)
		assert.Equal(t, httpx.CodeInvalidArgument, api.Code)
	}
}
