package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/apperror"
)

var validationOnce sync.Once

// registerValidation はバリデーションエラーのフィールド名にJSON（またはクエリ）の名前を使うよう設定する。
func registerValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return ""
		})
	})
}

// sanitizer は投稿テキストからマークアップを取り除くリクエスト。
type sanitizer interface {
	sanitize()
}

// bindJSON はリクエストボディをデコードして検証する。
// 構文エラーや空のボディは400、型の不一致や検証エラーはそのまま返し ErrorHandler で詳細付きの400にする。
// sanitizer を実装するリクエストは整形後の値でもう一度検証する。
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		if s, ok := obj.(sanitizer); ok {
			s.sanitize()
			return binding.Validator.ValidateStruct(obj)
		}
		return nil
	}
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &verrs) || errors.As(err, &typeErr) {
		return err
	}
	return apperror.Wrap(http.StatusBadRequest, "Invalid JSON body", err)
}

// bindQuery はクエリパラメータをデコードして検証する。
func bindQuery(c *gin.Context, obj any) error {
	err := c.ShouldBindQuery(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return err
	}
	return apperror.Wrap(http.StatusBadRequest, "Invalid query parameter", err)
}

// pathID はパスパラメータのIDを取り出す。UUIDでなければ notFound を返す。
// 存在しないIDと同様に扱い、形式の違いで存在を推測させない。
func pathID(c *gin.Context, notFound string) (string, error) {
	id := c.Param("id")
	if uuid.Validate(id) != nil {
		return "", apperror.NotFound(notFound)
	}
	return id, nil
}

// storeError はストアのエラーをレスポンス用のエラーに変換する。
// 行が見つからない場合は notFound の404、それ以外はそのまま返す。
func storeError(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.Wrap(http.StatusNotFound, notFound, err)
	}
	return err
}

// dataResponse は成功レスポンスの共通形式。
type dataResponse struct {
	Data any `json:"data"`
}
