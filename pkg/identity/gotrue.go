package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/feedbackhub/pkg/httpclient"
)

// GoTrue はSupabase Auth（GoTrue）のREST APIクライアント。
// トークン検証は公開キー、アカウント操作はサービスロールキーで行う。
type GoTrue struct {
	// public は利用者トークンでの問い合わせに使うクライアント。
	public *httpclient.Client
	// admin はサービスロールキーで管理APIを呼び出すクライアント。
	admin *httpclient.Client
}

var _ Provider = (*GoTrue)(nil)

// NewGoTrue は新しいGoTrueクライアントを生成する。
// baseURLにはプロジェクトURL（例: "https://xyz.supabase.co"）を指定する。
func NewGoTrue(baseURL, anonKey, serviceRoleKey string, opts ...httpclient.Option) *GoTrue {
	base := strings.TrimRight(baseURL, "/") + "/auth/v1"
	if serviceRoleKey == "" {
		serviceRoleKey = anonKey
	}

	publicOpts := append([]httpclient.Option{httpclient.WithHeader("apikey", anonKey)}, opts...)
	adminOpts := append([]httpclient.Option{
		httpclient.WithHeader("apikey", serviceRoleKey),
		httpclient.WithHeader("Authorization", "Bearer "+serviceRoleKey),
	}, opts...)

	return &GoTrue{
		public: httpclient.New(base, publicOpts...),
		admin:  httpclient.New(base, adminOpts...),
	}
}

// VerifyToken は GET /user でトークンに対応する利用者を取得する。
// 4xx応答はすべて ErrInvalidToken として扱う。
func (g *GoTrue) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	var user User
	err := g.public.GetJSON(httpclient.WithBearerToken(ctx, token), "/user", &user)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("トークン検証に失敗: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}
	return &user.Identity, nil
}

// GetUser は GET /admin/users/{id} でアカウント情報を取得する。
func (g *GoTrue) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := g.admin.GetJSON(ctx, adminUserPath(id), &user); err != nil {
		return nil, mapAdminError(err)
	}
	return &user, nil
}

// UpdateUserMetadata は PUT /admin/users/{id} でuser_metadataを更新する。
func (g *GoTrue) UpdateUserMetadata(ctx context.Context, id string, metadata map[string]any) (*User, error) {
	body := map[string]any{"user_metadata": metadata}
	var user User
	if err := g.admin.PutJSON(ctx, adminUserPath(id), body, &user); err != nil {
		return nil, mapAdminError(err)
	}
	return &user, nil
}

// DeleteUser は DELETE /admin/users/{id} でアカウントを削除する。
func (g *GoTrue) DeleteUser(ctx context.Context, id string) error {
	if err := g.admin.Delete(ctx, adminUserPath(id)); err != nil {
		return mapAdminError(err)
	}
	return nil
}

func adminUserPath(id string) string {
	return "/admin/users/" + url.PathEscape(id)
}

// mapAdminError は管理APIのエラーをパッケージのエラーに変換する。
func mapAdminError(err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	return fmt.Errorf("認証基盤の管理API呼び出しに失敗: %w", err)
}
