package store

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidVote は投票値が -1 / 0 / +1 以外であることを表す。
var ErrInvalidVote = errors.New("invalid vote value")

// ValidVote は投票値が受け付け可能かどうかを返す。
func ValidVote(value int) bool {
	return value == -1 || value == 0 || value == 1
}

// CastVote は投票を記録する。
// 0は既存の投票を削除し、±1は (feedback_id, voter_id) をキーにupsertする。
// 同じ投票を繰り返しても状態は変わらない。
func (s *Store) CastVote(ctx context.Context, v Vote) error {
	if !ValidVote(v.Value) {
		return ErrInvalidVote
	}

	if v.Value == 0 {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM feedback_votes WHERE feedback_id = $1 AND voter_id = $2`,
			v.FeedbackID, v.VoterID,
		)
		return mapError(err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_votes (feedback_id, voter_id, vote, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (feedback_id, voter_id) DO UPDATE SET vote = excluded.vote`,
		v.FeedbackID, v.VoterID, v.Value, time.Now().UTC(),
	)
	return mapError(err)
}

// GetVote は投票者の現在の投票値を返す。投票がなければ0を返す。
func (s *Store) GetVote(ctx context.Context, feedbackID, voterID string) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx,
		`SELECT vote FROM feedback_votes WHERE feedback_id = $1 AND voter_id = $2`,
		feedbackID, voterID,
	).Scan(&value)
	if err != nil {
		if errors.Is(mapError(err), ErrNotFound) {
			return 0, nil
		}
		return 0, mapError(err)
	}
	return value, nil
}
