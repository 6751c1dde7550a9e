package store

// SortKey はフィードバック一覧の並び替えキー。
type SortKey string

// 並び替えキー。
const (
	SortVotes     SortKey = "votes"
	SortScore     SortKey = "score"
	SortCreatedAt SortKey = "created_at"
	SortTitle     SortKey = "title"
	SortStatus    SortKey = "status"
	SortCategory  SortKey = "category"
)

// sortColumns は並び替えキーとSQLの列の対応。ここにないキーは受け付けない。
var sortColumns = map[SortKey]string{
	SortVotes:     "votes",
	SortScore:     "score",
	SortCreatedAt: "f.created_at",
	SortTitle:     "f.title",
	SortStatus:    "f.status",
	SortCategory:  "f.category",
}

// ParseSortKey は文字列を並び替えキーに変換する。空文字はSortVotes。
func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return SortVotes, true
	}
	key := SortKey(s)
	_, ok := sortColumns[key]
	return key, ok
}

// FeedbackFilter はフィードバック一覧の絞り込み条件。
type FeedbackFilter struct {
	// ProjectID, Category, Status は空でなければ等価条件として使う。
	ProjectID string
	Category  string
	Status    string
	Sort      SortKey
	Ascending bool
	// Limit が0の場合は全件を返す。
	Limit  int
	Offset int
}
