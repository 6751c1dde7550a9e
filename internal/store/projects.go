package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const projectColumns = `p.id, p.user_id, p.name, p.description, p.website_url, p.is_public, p.created_at`

// rowScanner は *sql.Row と *sql.Rows の共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner, extra ...any) (*Project, error) {
	var p Project
	dest := append([]any{&p.ID, &p.UserID, &p.Name, &p.Description, &p.WebsiteURL, &p.IsPublic, &p.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects は所有者のプロジェクトをフィードバック件数付きで新しい順に返す。
func (s *Store) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`,
			(SELECT COUNT(*) FROM feedback f WHERE f.project_id = p.id) AS feedback_count
		FROM projects p
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	projects := []Project{}
	for rows.Next() {
		var count int64
		p, err := scanProject(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("プロジェクトの読み取りに失敗: %w", err)
		}
		p.FeedbackCount = &count
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return projects, nil
}

// GetProject は所有者のプロジェクトを配下のフィードバック付きで返す。
func (s *Store) GetProject(ctx context.Context, id, userID string) (*Project, error) {
	p, err := s.getOwnedProject(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	feedback, err := s.ListFeedback(ctx, FeedbackFilter{ProjectID: p.ID, Sort: SortCreatedAt})
	if err != nil {
		return nil, err
	}
	p.Feedback = feedback
	return p, nil
}

func (s *Store) getOwnedProject(ctx context.Context, id, userID string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1 AND p.user_id = $2`, id, userID)
	p, err := scanProject(row)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// CreateProject はプロジェクトを作成する。
func (s *Store) CreateProject(ctx context.Context, in NewProject) (*Project, error) {
	p := &Project{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Name:        in.Name,
		Description: in.Description,
		WebsiteURL:  in.WebsiteURL,
		IsPublic:    in.IsPublic,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, description, website_url, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.UserID, p.Name, nullable(p.Description), nullable(p.WebsiteURL), p.IsPublic, p.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}

	s.logger.Debug().Str("project_id", p.ID).Str("user_id", p.UserID).Msg("プロジェクトを作成しました")
	return p, nil
}

// UpdateProject は所有者のプロジェクトを部分更新する。
// 該当行がなければ ErrNotFound を返す。
func (s *Store) UpdateProject(ctx context.Context, id, userID string, patch ProjectPatch) (*Project, error) {
	if patch.Empty() {
		return s.getOwnedProject(ctx, id, userID)
	}

	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.WebsiteURL != nil {
		set.add("website_url", *patch.WebsiteURL)
	}
	if patch.IsPublic != nil {
		set.add("is_public", *patch.IsPublic)
	}
	query := fmt.Sprintf(`UPDATE projects SET %s WHERE id = %s AND user_id = %s`, set.String(), set.next(id), set.next(userID))

	res, err := s.db.ExecContext(ctx, query, set.args...)
	if err != nil {
		return nil, mapError(err)
	}
	if err := affectedOne(res); err != nil {
		return nil, err
	}
	return s.getOwnedProject(ctx, id, userID)
}

// DeleteProject は所有者のプロジェクトを削除する。配下のフィードバックと投票も削除される。
func (s *Store) DeleteProject(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(res)
}
