package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/feedbackhub/pkg/identity"
	"github.com/nao1215/feedbackhub/pkg/middleware"
)

// handleMe は認証済みの身元を返すハンドラを返す。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dataResponse{Data: middleware.IdentityFrom(c)})
	}
}

// handleDeleteAccount はアカウント削除を処理するハンドラを返す。
// 所有データを削除してから認証基盤のアカウントを削除する。
func (s *Server) handleDeleteAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := middleware.UserID(c)

		if err := s.store.DeleteAccountData(ctx, userID); err != nil {
			_ = c.Error(err)
			return
		}
		if err := s.identity.DeleteUser(ctx, userID); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
			_ = c.Error(fmt.Errorf("アカウントの削除に失敗: %w", err))
			return
		}

		s.logger.Info().Str("user_id", userID).Msg("アカウントを削除しました")
		c.Status(http.StatusNoContent)
	}
}

// handleDevToken は開発用トークンの発行を処理するハンドラを返す。
// ローカル認証基盤かつ本番環境以外でのみ登録される。
func (s *Server) handleDevToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devTokenRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		user, err := s.devTokens.EnsureUser(c.Request.Context(), req.Email)
		if err != nil {
			_ = c.Error(err)
			return
		}
		token, err := s.devTokens.IssueToken(&user.Identity)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: gin.H{"token": token, "user": user.Identity}})
	}
}
