package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/feedbackhub/internal/apikey"
	"github.com/nao1215/feedbackhub/pkg/apperror"
	"github.com/nao1215/feedbackhub/pkg/identity"
	"github.com/nao1215/feedbackhub/pkg/middleware"
)

// handleGetAPIKey はマスク済みのAPIキー取得を処理するハンドラを返す。
func (s *Server) handleGetAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := s.keys.Masked(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			_ = c.Error(apiKeyError(err))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: summary})
	}
}

// handleShowAPIKey は平文のAPIキー取得を処理するハンドラを返す。
func (s *Server) handleShowAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := s.keys.Reveal(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			_ = c.Error(apiKeyError(err))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: apiKeyResponse{APIKey: key}})
	}
}

// handleRegenerateAPIKey はAPIキーの再発行を処理するハンドラを返す。
// 以前のキーは即座に無効になる。
func (s *Server) handleRegenerateAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := s.keys.Regenerate(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			_ = c.Error(apiKeyError(err))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: apiKeyResponse{
			APIKey:  key,
			Message: "API key generated successfully",
		}})
	}
}

// apiKeyError はAPIキー操作のエラーをレスポンス用のエラーに変換する。
// 内部のエラーメッセージはクライアントに返さない。
func apiKeyError(err error) error {
	switch {
	case errors.Is(err, apikey.ErrNoKey):
		return apperror.NotFound("No API key found. Please generate one first.")
	case errors.Is(err, identity.ErrUserNotFound):
		return apperror.Wrap(http.StatusNotFound, "User not found", err)
	default:
		return apperror.Wrap(http.StatusInternalServerError, "Internal server error", err)
	}
}
