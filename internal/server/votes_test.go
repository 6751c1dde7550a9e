package server

import (
	"net/http"
	"testing"

	"github.com/nao1215/feedbackhub/internal/store"
)

// voteOn は投票を実行してレスポンスを返す。
func (e *testEnv) voteOn(t *testing.T, feedbackID string, body any, token string, headers map[string]string) int {
	t.Helper()

	w := e.do(t, request{method: http.MethodPost, path: "/feedback/" + feedbackID + "/vote", body: body, token: token, headers: headers})
	return w.Code
}

// tally はフィードバックの投票数と合計を返す。
func (e *testEnv) tally(t *testing.T, feedbackID string) (votes, score int64) {
	t.Helper()

	f, err := e.store.GetFeedback(t.Context(), feedbackID)
	if err != nil {
		t.Fatalf("フィードバックの取得に失敗: %v", err)
	}
	return f.Votes, f.Score
}

// TestVote_InvalidValue は不正な投票値が400となり書き込まれないことを検証する。
func TestVote_InvalidValue(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	f := env.createFeedback(t, "", validFeedback("Vote target"))

	bodies := []struct {
		name string
		body any
	}{
		{name: "2", body: map[string]any{"vote": 2}},
		{name: "-2", body: map[string]any{"vote": -2}},
		{name: "小数", body: map[string]any{"vote": 0.5}},
		{name: "文字列", body: map[string]any{"vote": "1"}},
		{name: "真偽値", body: map[string]any{"vote": true}},
		{name: "null", body: map[string]any{"vote": nil}},
		{name: "未指定", body: map[string]any{}},
	}
	for _, tt := range bodies {
		t.Run(tt.name+"は400が返ること", func(t *testing.T) {
			w := env.do(t, request{method: http.MethodPost, path: "/feedback/" + f.ID + "/vote", body: tt.body})
			expectError(t, w, http.StatusBadRequest, "Invalid vote value")

			if votes, _ := env.tally(t, f.ID); votes != 0 {
				t.Errorf("votes = %d, want 0", votes)
			}
		})
	}
}

// TestVote_Semantics は投票の上書き・取り消し・冪等性を検証する。
func TestVote_Semantics(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	token, userID := env.login(t, "voter@example.com")
	f := env.createFeedback(t, "", validFeedback("Vote target"))

	steps := []struct {
		name      string
		vote      int
		wantVotes int64
		wantScore int64
	}{
		{name: "賛成票で1行追加されること", vote: 1, wantVotes: 1, wantScore: 1},
		{name: "同じ投票の繰り返しは状態を変えないこと", vote: 1, wantVotes: 1, wantScore: 1},
		{name: "反対票で上書きされること", vote: -1, wantVotes: 1, wantScore: -1},
		{name: "0で投票が削除されること", vote: 0, wantVotes: 0, wantScore: 0},
		{name: "投票が無い状態での0も成功すること", vote: 0, wantVotes: 0, wantScore: 0},
	}
	for _, step := range steps {
		if code := env.voteOn(t, f.ID, map[string]any{"vote": step.vote}, token, nil); code != http.StatusOK {
			t.Fatalf("%s: ステータスコード = %d, want %d", step.name, code, http.StatusOK)
		}
		votes, score := env.tally(t, f.ID)
		if votes != step.wantVotes || score != step.wantScore {
			t.Errorf("%s: votes=%d score=%d, want %d and %d", step.name, votes, score, step.wantVotes, step.wantScore)
		}
	}

	if v, err := env.store.GetVote(t.Context(), f.ID, userID); err != nil || v != 0 {
		t.Errorf("GetVote() = %d, %v; want 0, nil", v, err)
	}
}

// TestVote_VoterIdentity は投票者IDの決定方法を検証する。
func TestVote_VoterIdentity(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)
	token, userID := env.login(t, "voter@example.com")
	f := env.createFeedback(t, "", validFeedback("Vote target"))
	up := map[string]any{"vote": 1}

	calls := []struct {
		token   string
		headers map[string]string
	}{
		{token: token},
		{headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}},
		{headers: map[string]string{"X-Real-IP": "198.51.100.2"}},
		{headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "X-Real-IP": "198.51.100.9"}},
		{},
		{},
	}
	for _, call := range calls {
		if code := env.voteOn(t, f.ID, up, call.token, call.headers); code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", code, http.StatusOK)
		}
	}

	for _, voter := range []string{userID, "203.0.113.7, 10.0.0.1", "198.51.100.2", anonymousVoter} {
		if v, err := env.store.GetVote(t.Context(), f.ID, voter); err != nil || v != 1 {
			t.Errorf("voter %q: GetVote() = %d, %v; want 1", voter, v, err)
		}
	}
	if votes, _ := env.tally(t, f.ID); votes != 4 {
		t.Errorf("votes = %d, want 4", votes)
	}
}

// TestVote_UnknownFeedback は存在しないフィードバックへの投票を検証する。
func TestVote_UnknownFeedback(t *testing.T) {
	t.Parallel()

	env := setupTestServer(t, true)

	w := env.do(t, request{method: http.MethodPost, path: "/feedback/not-a-uuid/vote", body: map[string]any{"vote": 1}})
	expectError(t, w, http.StatusNotFound, "Feedback not found")

	w = env.do(t, request{method: http.MethodPost, path: "/feedback/5d2b8a0e-6c1f-4b3a-9e7d-8f0a1b2c3d4e/vote", body: map[string]any{"vote": 1}})
	resp := expectError(t, w, http.StatusBadRequest, "")
	if resp.Code == "" {
		t.Errorf("code が設定されていない: %+v", resp)
	}

	items, err := env.store.ListFeedback(t.Context(), store.FeedbackFilter{Sort: store.SortVotes})
	if err != nil || len(items) != 0 {
		t.Errorf("ListFeedback() = %v, %v", items, err)
	}
}
