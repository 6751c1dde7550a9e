package store

import "time"

// Category はフィードバックの種別。
type Category string

// フィードバックの種別。
const (
	CategoryBug         Category = "bug"
	CategoryFeature     Category = "feature"
	CategoryImprovement Category = "improvement"
	CategoryOther       Category = "other"
)

// Status はフィードバックの対応状況。
type Status string

// フィードバックの対応状況。
const (
	StatusOpen       Status = "open"
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
)

// Project はフィードバックを集める単位となるプロジェクト。
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	WebsiteURL  *string   `json:"website_url"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	// FeedbackCount は一覧取得時のみ設定する。
	FeedbackCount *int64 `json:"feedback_count,omitempty"`
	// Feedback は詳細取得時のみ設定する。
	Feedback []Feedback `json:"feedback,omitempty"`
}

// NewProject はプロジェクト作成時の入力。
type NewProject struct {
	UserID      string
	Name        string
	Description *string
	WebsiteURL  *string
	IsPublic    bool
}

// ProjectPatch はプロジェクトの部分更新。nilのフィールドは変更しない。
type ProjectPatch struct {
	Name        *string
	Description *string
	WebsiteURL  *string
	IsPublic    *bool
}

// Empty は変更項目がないかどうかを返す。
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.WebsiteURL == nil && p.IsPublic == nil
}

// Feedback は利用者から寄せられた要望・不具合報告。
type Feedback struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    *Category `json:"category"`
	Status      Status    `json:"status"`
	ProjectID   *string   `json:"project_id"`
	// UserID は投稿者のID。匿名投稿はnil。
	UserID    *string   `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	// Votes は投票数（行数）。
	Votes int64 `json:"votes"`
	// Score は投票値の合計。
	Score int64 `json:"score"`
}

// NewFeedback はフィードバック作成時の入力。
type NewFeedback struct {
	Title       string
	Description string
	Category    *Category
	ProjectID   *string
	UserID      *string
}

// FeedbackPatch はフィードバックの部分更新。nilのフィールドは変更しない。
type FeedbackPatch struct {
	Title       *string
	Description *string
	Category    *Category
	ProjectID   *string
}

// Empty は変更項目がないかどうかを返す。
func (p FeedbackPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.ProjectID == nil
}

// Vote は1人の投票者による1件のフィードバックへの投票。
type Vote struct {
	FeedbackID string
	VoterID    string
	// Value は -1 / 0 / +1。0は投票の取り消しを表す。
	Value int
}
