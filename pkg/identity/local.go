package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// localIssuer はローカルで発行するトークンのissuer。
	localIssuer = "feedbackhub-local"
	// localAudience はSupabaseと同じく認証済みユーザー向けのaudience。
	localAudience = "authenticated"
)

// Claims はローカルで発行するJWTのクレーム。
// Supabase Authが発行するトークンと同じ形（sub, email, role）にそろえる。
type Claims struct {
	jwt.RegisteredClaims
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// Role はトークンのロール。常に "authenticated"。
	Role string `json:"role"`
}

// Local はHS256署名のJWTとローカルのauth_usersテーブルで動作する認証基盤。
// 開発環境とテストで使用する。
type Local struct {
	// db はauth_usersテーブルを持つデータベース接続。
	db *sql.DB
	// secret はJWT署名用の秘密鍵。
	secret []byte
	// expiry は発行するトークンの有効期間。
	expiry time.Duration
	// now は現在時刻を返す関数。テストで差し替える。
	now func() time.Time
}

var _ Provider = (*Local)(nil)

// NewLocal はローカル認証基盤を生成し、必要なテーブルを作成する。
func NewLocal(ctx context.Context, db *sql.DB, secret string, expiry time.Duration) (*Local, error) {
	if secret == "" {
		return nil, errors.New("JWTシークレットが設定されていません")
	}
	if err := initSchema(ctx, db); err != nil {
		return nil, err
	}
	return &Local{
		db:     db,
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}, nil
}

// IssueToken はユーザーのアクセストークンを発行する。
func (l *Local) IssueToken(user *Identity) (string, error) {
	now := l.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    localIssuer,
			Audience:  jwt.ClaimStrings{localAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.expiry)),
		},
		Email: user.Email,
		Role:  localAudience,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// VerifyToken はトークンの署名と有効期限を検証し、対応するアカウントを返す。
// 削除済みアカウントのトークンは無効として扱う。
func (l *Local) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(localAudience),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := l.GetUser(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &user.Identity, nil
}

// EnsureUser はメールアドレスに対応するアカウントを取得し、存在しなければ作成する。
// ローカルではメール確認を省略し、作成時点で確認済みとする。
func (l *Local) EnsureUser(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("メールアドレスが指定されていません")
	}

	user, err := l.scanUser(l.db.QueryRowContext(ctx, selectUser+` WHERE email = $1`, email))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	now := l.now().UTC()
	id := uuid.NewString()
	if _, err := l.db.ExecContext(ctx,
		`INSERT INTO auth_users (id, email, email_confirmed_at, user_metadata, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, email, now, "{}", now,
	); err != nil {
		return nil, fmt.Errorf("アカウントの作成に失敗: %w", err)
	}
	return l.GetUser(ctx, id)
}

const selectUser = `SELECT id, email, email_confirmed_at, user_metadata FROM auth_users`

// GetUser はIDでアカウントを取得する。
func (l *Local) GetUser(ctx context.Context, id string) (*User, error) {
	return l.scanUser(l.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

// UpdateUserMetadata は指定キーを既存のメタデータに上書きマージする。
func (l *Local) UpdateUserMetadata(ctx context.Context, id string, metadata map[string]any) (*User, error) {
	user, err := l.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	for k, v := range metadata {
		user.UserMetadata[k] = v
	}

	encoded, err := json.Marshal(user.UserMetadata)
	if err != nil {
		return nil, fmt.Errorf("メタデータのシリアライズに失敗: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, `UPDATE auth_users SET user_metadata = $1 WHERE id = $2`, string(encoded), id); err != nil {
		return nil, fmt.Errorf("メタデータの更新に失敗: %w", err)
	}
	return user, nil
}

// DeleteUser はアカウントを削除する。
func (l *Local) DeleteUser(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM auth_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("アカウントの削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// scanUser は1行をUserに変換する。
func (l *Local) scanUser(row *sql.Row) (*User, error) {
	var (
		user        User
		confirmedAt sql.NullTime
		rawMetadata string
	)
	if err := row.Scan(&user.ID, &user.Email, &confirmedAt, &rawMetadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("アカウントの取得に失敗: %w", err)
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		user.EmailConfirmedAt = &t
	}
	user.UserMetadata = map[string]any{}
	if rawMetadata != "" {
		if err := json.Unmarshal([]byte(rawMetadata), &user.UserMetadata); err != nil {
			return nil, fmt.Errorf("メタデータのデシリアライズに失敗: %w", err)
		}
	}
	return &user, nil
}
