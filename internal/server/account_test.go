package server

import (
	"net/http"
	"testing"

	"github.com/nao1215/feedbackhub/internal/store"
)

// TestDeleteAccount はアカウント削除で所有データと認証情報が削除されることを検証する。
func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	token, userID := env.login(t, "leaver@example.com")
	otherToken, _ := env.login(t, "stayer@example.com")

	p := env.createProject(t, token, "Leaving")
	own := env.createFeedback(t, token, validFeedback("My request"))
	other := env.createFeedback(t, otherToken, validFeedback("Their request"))
	if code := env.voteOn(t, other.ID, map[string]any{"vote": 1}, token, nil); code != http.StatusOK {
		t.Fatalf("投票に失敗: %d", code)
	}

	w := env.do(t, request{method: http.MethodDelete, path: "/account", token: token})
	if w.Code != http.StatusNoContent {
		t.Fatalf("ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusNoContent, w.Body.String())
	}

	if _, err := env.store.GetFeedback(t.Context(), own.ID); err != store.ErrNotFound {
		t.Errorf("自身の投稿が残っている: %v", err)
	}
	if _, err := env.store.GetProject(t.Context(), p.ID, userID); err != store.ErrNotFound {
		t.Errorf("所有プロジェクトが残っている: %v", err)
	}
	if votes, _ := env.tally(t, other.ID); votes != 0 {
		t.Errorf("投票が残っている: votes=%d", votes)
	}

	w = env.do(t, request{method: http.MethodGet, path: "/me", token: token})
	expectError(t, w, http.StatusUnauthorized, "Invalid or expired token")

	if w := env.do(t, request{method: http.MethodGet, path: "/me", token: otherToken}); w.Code != http.StatusOK {
		t.Errorf("他のユーザーに影響している: %d", w.Code)
	}
}
