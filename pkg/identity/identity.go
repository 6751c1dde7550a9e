package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidToken はトークンが無効・期限切れ・失効済みであることを表す。
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound は指定IDのアカウントが存在しないことを表す。
	ErrUserNotFound = errors.New("user not found")
)

// Identity はトークンから解決された利用者の身元。
// リクエストごとに解決し、永続化はしない。
type Identity struct {
	// ID は認証基盤が発行する一意な主体ID。
	ID string `json:"id"`
	// Email はメールアドレス（未設定の場合は空）。
	Email string `json:"email,omitempty"`
	// EmailConfirmedAt はメールアドレスの確認日時。
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

// Confirmed はメールアドレスが確認済みかどうかを返す。
func (i *Identity) Confirmed() bool {
	return i != nil && i.EmailConfirmedAt != nil
}

// User は管理者APIから取得するアカウント情報。
type User struct {
	Identity
	// UserMetadata はアカウントに紐づく任意のメタデータ。
	UserMetadata map[string]any `json:"user_metadata"`
}

// Verifier はBearerトークンを検証して身元を返す。
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// Admin は管理者権限でアカウントを操作する。
type Admin interface {
	GetUser(ctx context.Context, id string) (*User, error)
	// UpdateUserMetadata は指定キーをメタデータに上書きマージする。
	UpdateUserMetadata(ctx context.Context, id string, metadata map[string]any) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Provider はVerifierとAdminの両方を備えた認証基盤。
type Provider interface {
	Verifier
	Admin
}
