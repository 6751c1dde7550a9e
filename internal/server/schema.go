package server

import (
	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/sanitize"
)

// createFeedbackRequest はフィードバック投稿リクエストのJSON構造。
type createFeedbackRequest struct {
	// Title はタイトル（3〜200文字）。
	Title string `json:"title" binding:"required,min=3,max=200"`
	// Description は本文（10〜2000文字）。
	Description string `json:"description" binding:"required,min=10,max=2000"`
	// Category は種別。
	Category *store.Category `json:"category" binding:"omitempty,oneof=bug feature improvement other"`
	// ProjectID は投稿先のプロジェクトID。
	ProjectID *string `json:"project_id" binding:"omitempty,uuid"`
}

// updateFeedbackRequest はフィードバック更新リクエストのJSON構造。
// 指定されたフィールドのみ更新する。
type updateFeedbackRequest struct {
	Title       *string         `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string         `json:"description" binding:"omitempty,min=10,max=2000"`
	Category    *store.Category `json:"category" binding:"omitempty,oneof=bug feature improvement other"`
	ProjectID   *string         `json:"project_id" binding:"omitempty,uuid"`
}

func (r *createFeedbackRequest) sanitize() {
	r.Title = sanitize.Text(r.Title)
	r.Description = sanitize.Text(r.Description)
}

func (r *updateFeedbackRequest) sanitize() {
	r.Title = sanitize.OptionalText(r.Title)
	r.Description = sanitize.OptionalText(r.Description)
}

// setStatusRequest は対応状況変更リクエストのJSON構造。
type setStatusRequest struct {
	Status store.Status `json:"status" binding:"required,oneof=open planned in_progress completed closed"`
}

// voteRequest は投票リクエストのJSON構造。
// 数値以外の値も「不正な投票値」として扱うため any で受け取る。
type voteRequest struct {
	Vote any `json:"vote"`
}

// listFeedbackQuery はフィードバック一覧のクエリパラメータ。
type listFeedbackQuery struct {
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	Category  string `form:"category" binding:"omitempty,oneof=bug feature improvement other"`
	Status    string `form:"status" binding:"omitempty,oneof=open planned in_progress completed closed"`
	Sort      string `form:"sort"`
	Order     string `form:"order"`
	// Page は1始まりのページ番号。Limit を省略した場合は10件ずつ区切る。
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// createProjectRequest はプロジェクト作成リクエストのJSON構造。
type createProjectRequest struct {
	// Name はプロジェクト名（2〜100文字）。
	Name string `json:"name" binding:"required,min=2,max=100"`
	// Description は説明（500文字以内）。
	Description *string `json:"description" binding:"omitempty,max=500"`
	// WebsiteURL はプロジェクトのWebサイト。
	WebsiteURL *string `json:"website_url" binding:"omitempty,url"`
	// IsPublic は公開フラグ。省略時はtrue。
	IsPublic *bool `json:"is_public"`
}

// updateProjectRequest はプロジェクト更新リクエストのJSON構造。
type updateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	WebsiteURL  *string `json:"website_url" binding:"omitempty,url"`
	IsPublic    *bool   `json:"is_public"`
}

func (r *createProjectRequest) sanitize() {
	r.Name = sanitize.Text(r.Name)
	r.Description = sanitize.OptionalText(r.Description)
}

func (r *updateProjectRequest) sanitize() {
	r.Name = sanitize.OptionalText(r.Name)
	r.Description = sanitize.OptionalText(r.Description)
}

// devTokenRequest は開発用トークン発行リクエストのJSON構造。
type devTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// apiKeyResponse はAPIキー取得・再発行のレスポンス構造。
type apiKeyResponse struct {
	APIKey  string `json:"apiKey"`
	Message string `json:"message,omitempty"`
}

// healthResponse はヘルスチェックのレスポンス構造。
type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
