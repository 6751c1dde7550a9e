package identity

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeGoTrue はGoTrueのユーザーAPIを模したテストサーバーを生成する。
func newFakeGoTrue(t *testing.T) *httptest.Server {
	t.Helper()

	users := map[string]map[string]any{
		"u-1": {"id": "u-1", "email": "owner@example.com", "email_confirmed_at": "2024-05-01T10:00:00Z", "user_metadata": map[string]any{}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"msg":"invalid JWT"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(users["u-1"])
	})
	mux.HandleFunc("/auth/v1/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		user, ok := users[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":404,"msg":"User not found"}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			var req struct {
				UserMetadata map[string]any `json:"user_metadata"`
			}
			_ = json.Unmarshal(body, &req)
			user["user_metadata"] = req.UserMetadata
		case http.MethodDelete:
			delete(users, r.PathValue("id"))
		}
		_ = json.NewEncoder(w).Encode(user)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestGoTrue_VerifyToken(t *testing.T) {
	ts := newFakeGoTrue(t)
	client := NewGoTrue(ts.URL+"/", "anon", "service")

	got, err := client.VerifyToken(t.Context(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "owner@example.com", got.Email)
	assert.True(t, got.Confirmed())

	_, err = client.VerifyToken(t.Context(), "expired-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGoTrue_VerifyTokenTransportFailure(t *testing.T) {
	client := NewGoTrue("http://127.0.0.1:1", "anon", "service")

	_, err := client.VerifyToken(t.Context(), "good-token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestGoTrue_AdminOperations(t *testing.T) {
	ts := newFakeGoTrue(t)
	client := NewGoTrue(ts.URL, "anon", "service")

	user, err := client.UpdateUserMetadata(t.Context(), "u-1", map[string]any{"api_key": "pk_abc"})
	require.NoError(t, err)
	assert.Equal(t, "pk_abc", user.UserMetadata["api_key"])

	user, err = client.GetUser(t.Context(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "pk_abc", user.UserMetadata["api_key"])

	require.NoError(t, client.DeleteUser(t.Context(), "u-1"))

	_, err = client.GetUser(t.Context(), "u-1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, client.DeleteUser(t.Context(), "u-1"), ErrUserNotFound)
}
