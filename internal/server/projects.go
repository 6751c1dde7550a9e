package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/middleware"
)

// messageProjectNotFound はプロジェクトが見つからない、または所有していない場合のメッセージ。
const messageProjectNotFound = "Project not found"

// handleListProjects は呼び出し元のプロジェクト一覧取得を処理するハンドラを返す。
func (s *Server) handleListProjects() gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := s.store.ListProjects(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: projects})
	}
}

// handleGetProject はプロジェクト詳細取得を処理するハンドラを返す。
// 配下のフィードバックを含めて返す。
func (s *Server) handleGetProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, messageProjectNotFound)
		if err != nil {
			_ = c.Error(err)
			return
		}

		p, err := s.store.GetProject(c.Request.Context(), id, middleware.UserID(c))
		if err != nil {
			_ = c.Error(storeError(err, messageProjectNotFound))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: p})
	}
}

// handleCreateProject はプロジェクト作成を処理するハンドラを返す。
func (s *Server) handleCreateProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		isPublic := true
		if req.IsPublic != nil {
			isPublic = *req.IsPublic
		}

		p, err := s.store.CreateProject(c.Request.Context(), store.NewProject{
			UserID:      middleware.UserID(c),
			Name:        req.Name,
			Description: req.Description,
			WebsiteURL:  req.WebsiteURL,
			IsPublic:    isPublic,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, dataResponse{Data: p})
	}
}

// handleUpdateProject はプロジェクト更新を処理するハンドラを返す。
func (s *Server) handleUpdateProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, messageProjectNotFound)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var req updateProjectRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		p, err := s.store.UpdateProject(c.Request.Context(), id, middleware.UserID(c), store.ProjectPatch{
			Name:        req.Name,
			Description: req.Description,
			WebsiteURL:  req.WebsiteURL,
			IsPublic:    req.IsPublic,
		})
		if err != nil {
			_ = c.Error(storeError(err, messageProjectNotFound))
			return
		}
		c.JSON(http.StatusOK, dataResponse{Data: p})
	}
}

// handleDeleteProject はプロジェクト削除を処理するハンドラを返す。
// 配下のフィードバックと投票も削除される。
func (s *Server) handleDeleteProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, messageProjectNotFound)
		if err != nil {
			_ = c.Error(err)
			return
		}

		if err := s.store.DeleteProject(c.Request.Context(), id, middleware.UserID(c)); err != nil {
			_ = c.Error(storeError(err, messageProjectNotFound))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
