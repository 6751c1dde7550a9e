package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/feedbackhub/pkg/apperror"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニックはスタックトレース付きのエラーとして登録し、レスポンスは ErrorHandler が生成する。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}
			_ = c.Error(&apperror.PanicError{Value: r, Stack: debug.Stack()})
			c.Abort()
		}()
		c.Next()
	}
}
