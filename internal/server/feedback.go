package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/apperror"
	"github.com/nao1215/feedbackhub/pkg/middleware"
)

// フィードバックが見つからない場合のメッセージ。
const (
	messageFeedbackNotFound = "Feedback not found"
	messageFeedbackNotOwned = "Feedback not found or unauthorized"
)

// defaultPageSize は page のみ指定された場合の1ページの件数。
const defaultPageSize = 10

// handleListFeedback はフィードバック一覧取得を処理するハンドラを返す。
// 並び替えキーは許可されたもののみ受け付ける。
func (s *Server) handleListFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q listFeedbackQuery
		if err := bindQuery(c, &q); err != nil {
			_ = c.Error(err)
			return
		}

		sortKey, ok := store.ParseSortKey(q.Sort)
		if !ok {
			_ = c.Error(apperror.InvalidInput("Invalid sort key"))
			return
		}
		var ascending bool
		switch q.Order {
		case "", "desc":
		case "asc":
			ascending = true
		default:
			_ = c.Error(apperror.InvalidInput("Invalid sort order"))
			return
		}

		filter := store.FeedbackFilter{
			ProjectID: q.ProjectID,
			Category:  q.Category,
			Status:    q.Status,
			Sort:      sortKey,
			Ascending: ascending,
		}
		limit := q.Limit
		if limit == 0 && q.Page > 0 {
			limit = defaultPageSize
		}
		if limit > 0 {
			filter.Limit = limit
			filter.Offset = max(q.Page-1, 0) * limit
		}

		items, err := s.store.ListFeedback(c.Request.Context(), filter)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: items})
	}
}

// handleGetFeedback はフィードバック詳細取得を処理するハンドラを返す。
func (s *Server) handleGetFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, messageFeedbackNotFound)
		if err != nil {
			_ = c.Error(err)
			return
		}

		f, err := s.store.GetFeedback(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(storeError(err, messageFeedbackNotFound))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: f})
	}
}

// handleCreateFeedback はフィードバック投稿を処理するハンドラを返す。
// 匿名投稿の場合 user_id はnullになる。
func (s *Server) handleCreateFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createFeedbackRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		in := store.NewFeedback{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			ProjectID:   req.ProjectID,
		}
		if userID := middleware.UserID(c); userID != "" {
			in.UserID = &userID
		}

		f, err := s.store.CreateFeedback(c.Request.Context(), in)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, dataResponse{Data: f})
	}
}

// handleUpdateFeedback はフィードバック更新を処理するハンドラを返す。
// 投稿者本人以外からの更新は存在しない場合と同じく404を返す。
func (s *Server) handleUpdateFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, messageFeedbackNotOwned)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var req updateFeedbackRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		f, err := s.store.UpdateFeedback(c.Request.Context(), id, middleware.UserID(c), store.FeedbackPatch{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			ProjectID:   req.ProjectID,
		})
		if err != nil {
			_ = c.Error(storeError(err, messageFeedbackNotOwned))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: f})
	}
}

// handleDeleteFeedback はフィードバック削除を処理するハンドラを返す。
func (s *Server) handleDeleteFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, messageFeedbackNotOwned)
		if err != nil {
			_ = c.Error(err)
			return
		}

		if err := s.store.DeleteFeedback(c.Request.Context(), id, middleware.UserID(c)); err != nil {
			_ = c.Error(storeError(err, messageFeedbackNotOwned))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// handleSetFeedbackStatus はプロジェクト所有者による対応状況の変更を処理するハンドラを返す。
func (s *Server) handleSetFeedbackStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, messageFeedbackNotOwned)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var req setStatusRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		f, err := s.store.SetFeedbackStatus(c.Request.Context(), id, middleware.UserID(c), req.Status)
		if err != nil {
			_ = c.Error(storeError(err, messageFeedbackNotOwned))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: f})
	}
}
