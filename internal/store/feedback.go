package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const feedbackColumns = `f.id, f.title, f.description, f.category, f.status, f.project_id, f.user_id, f.created_at`

// feedbackSelect は投票数と投票値の合計を集計するSELECT句。
const feedbackSelect = `
	SELECT ` + feedbackColumns + `,
		COUNT(v.voter_id) AS votes,
		COALESCE(SUM(v.vote), 0) AS score
	FROM feedback f
	LEFT JOIN feedback_votes v ON v.feedback_id = f.id`

const feedbackGroupBy = ` GROUP BY ` + feedbackColumns

func scanFeedback(row rowScanner) (*Feedback, error) {
	var f Feedback
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Category, &f.Status, &f.ProjectID, &f.UserID, &f.CreatedAt, &f.Votes, &f.Score); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFeedback は条件に一致するフィードバックを投票集計付きで返す。
func (s *Store) ListFeedback(ctx context.Context, filter FeedbackFilter) ([]Feedback, error) {
	column, ok := sortColumns[filter.Sort]
	if !ok {
		return nil, fmt.Errorf("未対応の並び替えキー: %q", filter.Sort)
	}

	var (
		where []string
		q     setClause
	)
	if filter.ProjectID != "" {
		where = append(where, "f.project_id = "+q.next(filter.ProjectID))
	}
	if filter.Category != "" {
		where = append(where, "f.category = "+q.next(filter.Category))
	}
	if filter.Status != "" {
		where = append(where, "f.status = "+q.next(filter.Status))
	}

	var b strings.Builder
	b.WriteString(feedbackSelect)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(feedbackGroupBy)

	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, f.created_at DESC, f.id", column, direction)

	if filter.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %s OFFSET %s", q.next(filter.Limit), q.next(filter.Offset))
	}

	rows, err := s.db.QueryContext(ctx, b.String(), q.args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("フィードバックの読み取りに失敗: %w", err)
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// GetFeedback はIDでフィードバックを取得する。
func (s *Store) GetFeedback(ctx context.Context, id string) (*Feedback, error) {
	row := s.db.QueryRowContext(ctx, feedbackSelect+` WHERE f.id = $1`+feedbackGroupBy, id)
	f, err := scanFeedback(row)
	if err != nil {
		return nil, mapError(err)
	}
	return f, nil
}

// CreateFeedback はフィードバックを status=open で作成する。
func (s *Store) CreateFeedback(ctx context.Context, in NewFeedback) (*Feedback, error) {
	f := &Feedback{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      StatusOpen,
		ProjectID:   in.ProjectID,
		UserID:      in.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, title, description, category, status, project_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.Title, f.Description, nullable(f.Category), string(f.Status), nullable(f.ProjectID), nullable(f.UserID), f.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return f, nil
}

// UpdateFeedback は投稿者本人のフィードバックを部分更新する。
// 該当行がなければ ErrNotFound を返す。
func (s *Store) UpdateFeedback(ctx context.Context, id, userID string, patch FeedbackPatch) (*Feedback, error) {
	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Category != nil {
		set.add("category", string(*patch.Category))
	}
	if patch.ProjectID != nil {
		set.add("project_id", *patch.ProjectID)
	}

	var query string
	if patch.Empty() {
		// 変更項目がなくても所有者チェックは行う
		query = fmt.Sprintf(`UPDATE feedback SET status = status WHERE id = %s AND user_id = %s`, set.next(id), set.next(userID))
	} else {
		query = fmt.Sprintf(`UPDATE feedback SET %s WHERE id = %s AND user_id = %s`, set.String(), set.next(id), set.next(userID))
	}

	res, err := s.db.ExecContext(ctx, query, set.args...)
	if err != nil {
		return nil, mapError(err)
	}
	if err := affectedOne(res); err != nil {
		return nil, err
	}
	return s.GetFeedback(ctx, id)
}

// SetFeedbackStatus はプロジェクト所有者がフィードバックの対応状況を変更する。
// 呼び出し元が所有するプロジェクトに属さないフィードバックは ErrNotFound。
func (s *Store) SetFeedbackStatus(ctx context.Context, id, projectOwnerID string, status Status) (*Feedback, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE feedback SET status = $1
		WHERE id = $2 AND project_id IN (SELECT p.id FROM projects p WHERE p.user_id = $3)`,
		string(status), id, projectOwnerID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if err := affectedOne(res); err != nil {
		return nil, err
	}

	s.logger.Info().Str("feedback_id", id).Str("status", string(status)).Msg("フィードバックの対応状況を変更しました")
	return s.GetFeedback(ctx, id)
}

// DeleteFeedback は投稿者本人のフィードバックを削除する。
func (s *Store) DeleteFeedback(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(res)
}
