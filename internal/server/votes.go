package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/apperror"
	"github.com/nao1215/feedbackhub/pkg/middleware"
)

// anonymousVoter は認証情報もプロキシヘッダーも無い投票者のID。
// 該当する投票者はすべてこの1つのIDにまとめられる。
const anonymousVoter = "anonymous"

// handleVote は投票を処理するハンドラを返す。
// 0は投票の取り消し、±1は同じ投票者の既存の投票を上書きする。
func (s *Server) handleVote() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req voteRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}
		value, ok := voteValue(req.Vote)
		if !ok {
			_ = c.Error(apperror.InvalidInput("Invalid vote value"))
			return
		}

		id, err := pathID(c, messageFeedbackNotFound)
		if err != nil {
			_ = c.Error(err)
			return
		}

		if err := s.store.CastVote(c.Request.Context(), store.Vote{
			FeedbackID: id,
			VoterID:    voterID(c),
			Value:      value,
		}); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// voteValue はJSONの投票値を -1 / 0 / +1 の整数に変換する。
func voteValue(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	value := int(f)
	if float64(value) != f || !store.ValidVote(value) {
		return 0, false
	}
	return value, true
}

// voterID は投票者のIDを決定する。
// 認証済みならユーザーID、それ以外はプロキシヘッダーの値をそのまま使う。
func voterID(c *gin.Context) string {
	if userID := middleware.UserID(c); userID != "" {
		return userID
	}
	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		if v := c.GetHeader(header); v != "" {
			return v
		}
	}
	return anonymousVoter
}
