package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/apperror"
	"github.com/nao1215/feedbackhub/pkg/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv はテスト用のサーバーと依存コンポーネント。
type testEnv struct {
	server *Server
	store  *store.Store
	local  *identity.Local
}

// setupTestServer はインメモリSQLiteとローカル認証基盤でサーバーを構築する。
func setupTestServer(t *testing.T, production bool) *testEnv {
	t.Helper()

	db, err := store.Open(store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := store.Migrate(t.Context(), db, store.DriverSQLite, zerolog.Nop()); err != nil {
		t.Fatalf("マイグレーションに失敗: %v", err)
	}
	local, err := identity.NewLocal(t.Context(), db, "server-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("ローカル認証基盤の初期化に失敗: %v", err)
	}

	st := store.New(db, zerolog.Nop())
	s := New(Deps{
		Store:          st,
		Identity:       local,
		DevTokens:      local,
		Logger:         zerolog.Nop(),
		Registry:       prometheus.NewRegistry(),
		AllowedOrigins: []string{"http://localhost:3000"},
		Production:     production,
	})
	return &testEnv{server: s, store: st, local: local}
}

// login はメールアドレスに対応するユーザーを作成し、トークンとユーザーIDを返す。
func (e *testEnv) login(t *testing.T, email string) (token, userID string) {
	t.Helper()

	user, err := e.local.EnsureUser(t.Context(), email)
	if err != nil {
		t.Fatalf("ユーザーの作成に失敗: %v", err)
	}
	token, err = e.local.IssueToken(&user.Identity)
	if err != nil {
		t.Fatalf("トークンの発行に失敗: %v", err)
	}
	return token, user.ID
}

// request はテスト用のリクエスト。
type request struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

// do はリクエストを実行してレスポンスを返す。
// body が string の場合はそのまま送信し、それ以外はJSONにエンコードする。
func (e *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := r.body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("リクエストのエンコードに失敗: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

// decode はレスポンスボディをデコードする。
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v (body=%s)", err, w.Body.String())
	}
	return v
}

// data は {data: ...} 形式のレスポンス。
type data[T any] struct {
	Data T `json:"data"`
}

// expectError はエラーレスポンスのステータスとメッセージを検証する。
func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) apperror.Response {
	t.Helper()

	if w.Code != status {
		t.Fatalf("ステータスコード = %d, want %d (body=%s)", w.Code, status, w.Body.String())
	}
	resp := decode[apperror.Response](t, w)
	if message != "" && resp.Error != message {
		t.Errorf("error = %q, want %q", resp.Error, message)
	}
	return resp
}

// createFeedback はフィードバックを投稿し、作成されたフィードバックを返す。
func (e *testEnv) createFeedback(t *testing.T, token string, body map[string]any) store.Feedback {
	t.Helper()

	w := e.do(t, request{method: http.MethodPost, path: "/feedback", body: body, token: token})
	if w.Code != http.StatusCreated {
		t.Fatalf("フィードバックの投稿に失敗: %d %s", w.Code, w.Body.String())
	}
	return decode[data[store.Feedback]](t, w).Data
}

// createProject はプロジェクトを作成し、作成されたプロジェクトを返す。
func (e *testEnv) createProject(t *testing.T, token, name string) store.Project {
	t.Helper()

	w := e.do(t, request{method: http.MethodPost, path: "/projects", body: map[string]any{"name": name}, token: token})
	if w.Code != http.StatusCreated {
		t.Fatalf("プロジェクトの作成に失敗: %d %s", w.Code, w.Body.String())
	}
	return decode[data[store.Project]](t, w).Data
}

// TestHealth はヘルスチェックエンドポイントを検証する。
func TestHealth(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	env.server.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }

	w := env.do(t, request{method: http.MethodGet, path: "/health"})
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	got := decode[healthResponse](t, w)
	if got.Status != "ok" {
		t.Errorf("status = %q, want %q", got.Status, "ok")
	}
	if got.Timestamp != "2026-01-02T03:04:05.006Z" {
		t.Errorf("timestamp = %q, want %q", got.Timestamp, "2026-01-02T03:04:05.006Z")
	}

	if w := env.do(t, request{method: http.MethodGet, path: "/health/ready"}); w.Code != http.StatusOK {
		t.Errorf("/health/ready ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
}

// TestMetricsEndpoint はメトリクスの公開を検証する。
func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	env.do(t, request{method: http.MethodGet, path: "/health"})

	w := env.do(t, request{method: http.MethodGet, path: "/metrics"})
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `feedbackhub_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("リクエスト数のメトリクスが出力されていない:\n%s", w.Body.String())
	}
}

// TestCORSPreflight はダッシュボードからのプリフライトを検証する。
func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	w := env.do(t, request{
		method:  http.MethodOptions,
		path:    "/feedback/abc",
		headers: map[string]string{"Origin": "http://localhost:3000"},
	})
	if w.Code != http.StatusNoContent {
		t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

// TestRequireAuthRoutes は認証必須のエンドポイントがトークン無しで401を返すことを検証する。
func TestRequireAuthRoutes(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	id := "6f1c1a52-4b0c-4a59-9f0e-3c3c3c3c3c3c"
	routes := []struct{ method, path string }{
		{http.MethodGet, "/projects"},
		{http.MethodPost, "/projects"},
		{http.MethodGet, "/projects/" + id},
		{http.MethodPatch, "/projects/" + id},
		{http.MethodDelete, "/projects/" + id},
		{http.MethodPatch, "/feedback/" + id},
		{http.MethodDelete, "/feedback/" + id},
		{http.MethodPatch, "/feedback/" + id + "/status"},
		{http.MethodGet, "/api-keys"},
		{http.MethodGet, "/api-keys/show"},
		{http.MethodPost, "/api-keys/regenerate"},
		{http.MethodGet, "/me"},
		{http.MethodDelete, "/account"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			t.Parallel()

			w := env.do(t, request{method: route.method, path: route.path})
			expectError(t, w, http.StatusUnauthorized, "Missing or invalid authorization header")

			w = env.do(t, request{method: route.method, path: route.path, token: "not-a-jwt"})
			expectError(t, w, http.StatusUnauthorized, "Invalid or expired token")
		})
	}
}

// TestMe は認証済みの身元が返ることを検証する。
func TestMe(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	token, userID := env.login(t, "me@example.com")

	w := env.do(t, request{method: http.MethodGet, path: "/me", token: token})
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	got := decode[data[identity.Identity]](t, w).Data
	if got.ID != userID || got.Email != "me@example.com" {
		t.Errorf("identity = %+v, want id=%q email=%q", got, userID, "me@example.com")
	}
}

// TestDevToken は開発用トークンの発行を検証する。
func TestDevToken(t *testing.T) {
	t.Parallel()

	t.Run("開発環境ではトークンを発行しそのまま利用できること", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t, false)
		w := env.do(t, request{method: http.MethodPost, path: "/auth/dev-token", body: map[string]any{"email": "dev@example.com"}})
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusOK, w.Body.String())
		}
		token := decode[data[struct {
			Token string `json:"token"`
		}]](t, w).Data.Token

		if w := env.do(t, request{method: http.MethodGet, path: "/me", token: token}); w.Code != http.StatusOK {
			t.Errorf("発行したトークンで認証できない: %d", w.Code)
		}
	})

	t.Run("不正なメールアドレスは400が返ること", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t, false)
		w := env.do(t, request{method: http.MethodPost, path: "/auth/dev-token", body: map[string]any{"email": "not-an-email"}})
		resp := expectError(t, w, http.StatusBadRequest, "Validation error")
		if len(resp.Details) != 1 || resp.Details[0].Field != "email" {
			t.Errorf("details = %+v", resp.Details)
		}
	})

	t.Run("本番環境ではエンドポイントが存在しないこと", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t, true)
		w := env.do(t, request{method: http.MethodPost, path: "/auth/dev-token", body: map[string]any{"email": "dev@example.com"}})
		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}
