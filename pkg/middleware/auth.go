package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nao1215/feedbackhub/pkg/apperror"
	"github.com/nao1215/feedbackhub/pkg/identity"
)

// 認証失敗時のメッセージ。失敗の原因（期限切れ、失効、通信エラー）は返さない。
const (
	messageMissingToken = "Missing or invalid authorization header"
	messageInvalidToken = "Invalid or expired token"
)

// contextKeyIdentity は認証済みの身元を格納するGinコンテキストのキー。
const contextKeyIdentity = "identity"

// RequireAuth はBearerトークンの検証を必須とするGinミドルウェアを返す。
// 検証に成功した場合、身元をコンテキストに設定する。
func RequireAuth(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c, messageMissingToken)
			return
		}

		id, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil || id == nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("トークンの検証に失敗しました")
			abortUnauthenticated(c, messageInvalidToken)
			return
		}

		c.Set(contextKeyIdentity, id)
		c.Next()
	}
}

// OptionalAuth はトークンがあれば検証するGinミドルウェアを返す。
// トークンがない、または検証に失敗した場合は匿名として処理を続ける。
func OptionalAuth(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if ok {
			id, err := verifier.VerifyToken(c.Request.Context(), token)
			if err == nil && id != nil {
				c.Set(contextKeyIdentity, id)
			} else {
				zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("トークンの検証に失敗したため匿名として処理します")
			}
		}
		c.Next()
	}
}

// IdentityFrom はGinコンテキストから認証済みの身元を取得する。
// 匿名リクエストではnilを返す。
func IdentityFrom(c *gin.Context) *identity.Identity {
	v, ok := c.Get(contextKeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*identity.Identity)
	return id
}

// UserID はGinコンテキストから認証済みユーザーのIDを取得する。
// 匿名リクエストでは空文字を返す。
func UserID(c *gin.Context) string {
	if id := IdentityFrom(c); id != nil {
		return id.ID
	}
	return ""
}

// bearerToken はAuthorizationヘッダーからトークンを取り出す。
func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthenticated(c *gin.Context, message string) {
	_ = c.Error(apperror.Unauthenticated(message))
	c.Abort()
}
