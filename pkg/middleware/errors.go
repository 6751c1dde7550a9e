package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nao1215/feedbackhub/pkg/apperror"
)

// ErrorHandler はハンドラが c.Error で登録したエラーをJSONレスポンスに変換するGinミドルウェアを返す。
// 複数登録されている場合は最後のエラーを採用する。
// production が false の場合、想定外のエラーにはスタックトレースを含める。
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		status, body := apperror.Normalize(last.Err, production)

		logger := zerolog.Ctx(c.Request.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.Err(last.Err).
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("リクエストの処理に失敗しました")

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, body)
	}
}
