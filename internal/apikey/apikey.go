package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nao1215/feedbackhub/pkg/identity"
)

const (
	// Prefix はAPIキーの接頭辞。
	Prefix = "pk_"
	// metadataKey はユーザーメタデータ上の保存先キー。
	metadataKey = "api_key"
	// keyBytes は乱数部分のバイト数（16進で64文字）。
	keyBytes = 32
	// visibleChars はマスク表示で残す末尾の文字数。
	visibleChars = 8
)

// ErrNoKey はAPIキーが未発行であることを表す。
var ErrNoKey = errors.New("api key not found")

// Generate は新しいAPIキーを生成する。
func Generate() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("乱数の生成に失敗: %w", err)
	}
	return Prefix + hex.EncodeToString(buf), nil
}

// Mask はAPIキーを末尾8文字以外伏せ字にした表示用文字列を返す。
func Mask(key string) string {
	body := []rune(strings.TrimPrefix(key, Prefix))
	hidden := max(0, len(body)-visibleChars)
	return Prefix + strings.Repeat("•", hidden) + string(body[hidden:])
}

// Summary は一覧表示用のAPIキー情報。
type Summary struct {
	// APIKey はマスク済みのキー。未発行ならnil。
	APIKey *string `json:"apiKey"`
	// HasKey はキーが発行済みかどうか。
	HasKey bool `json:"hasKey"`
}

// Service はユーザーメタデータ上のAPIキーを管理する。
type Service struct {
	// admin は認証基盤の管理者API。
	admin identity.Admin
	// logger はコンポーネントのロガー。
	logger zerolog.Logger
}

// NewService は新しいServiceを生成する。
func NewService(admin identity.Admin, logger zerolog.Logger) *Service {
	return &Service{
		admin:  admin,
		logger: logger.With().Str("component", "apikey").Logger(),
	}
}

// Masked はマスク済みのキーと発行状況を返す。
func (s *Service) Masked(ctx context.Context, userID string) (Summary, error) {
	key, err := s.Reveal(ctx, userID)
	if errors.Is(err, ErrNoKey) {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, err
	}
	masked := Mask(key)
	return Summary{APIKey: &masked, HasKey: true}, nil
}

// Reveal は平文のキーを返す。未発行なら ErrNoKey を返す。
func (s *Service) Reveal(ctx context.Context, userID string) (string, error) {
	user, err := s.admin.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	key, _ := user.UserMetadata[metadataKey].(string)
	if key == "" {
		return "", ErrNoKey
	}
	return key, nil
}

// Regenerate は新しいキーを発行して既存のキーを置き換える。
func (s *Service) Regenerate(ctx context.Context, userID string) (string, error) {
	key, err := Generate()
	if err != nil {
		return "", err
	}
	if _, err := s.admin.UpdateUserMetadata(ctx, userID, map[string]any{metadataKey: key}); err != nil {
		return "", fmt.Errorf("APIキーの保存に失敗: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("APIキーを再発行しました")
	return key, nil
}
