package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/feedbackhub/pkg/apperror"
)

// timestampLayout はヘルスチェックの時刻形式（ISO 8601、ミリ秒、UTC）。
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// handleHealth はヘルスチェックを処理するハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, healthResponse{
			Status:    "ok",
			Timestamp: s.now().UTC().Format(timestampLayout),
		})
	}
}

// handleReady はデータベースへの疎通を含めた準備状態を返すハンドラを返す。
func (s *Server) handleReady() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			_ = c.Error(apperror.Wrap(http.StatusServiceUnavailable, "Database unavailable", err))
			return
		}
		c.JSON(http.StatusOK, healthResponse{Status: "ok", Timestamp: s.now().UTC().Format(timestampLayout)})
	}
}
