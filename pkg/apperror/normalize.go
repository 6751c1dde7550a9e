package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// デフォルトのエラーメッセージ。
const (
	messageValidation = "Validation error"
	messageInternal   = "Internal server error"
)

// FieldError はバリデーションエラーのフィールド単位の詳細。
type FieldError struct {
	// Field はエラーが発生したフィールドのパス（ドット区切り）。
	Field string `json:"field"`
	// Message はエラー内容。
	Message string `json:"message"`
}

// Response はクライアントに返すエラーレスポンスのJSON構造。
type Response struct {
	// Error はエラーメッセージ。
	Error string `json:"error"`
	// Code はデータストアのエラーコード。
	Code string `json:"code,omitempty"`
	// Details はバリデーションエラーの詳細。
	Details []FieldError `json:"details,omitempty"`
	// Stack は開発環境でのみ出力するスタックトレース。
	Stack []string `json:"stack,omitempty"`
}

// Normalize は任意のエラーをHTTPステータスとレスポンスボディに変換する。
// 判定は以下の順で行い、最初に一致したものを採用する。
//
//  1. スキーマバリデーションエラー → 400 + details
//  2. データストアのエラー → 400 + code
//  3. アプリケーションエラー → 指定ステータス
//  4. それ以外 → 500（productionでなければスタックトレースを付与）
func Normalize(err error, production bool) (int, Response) {
	if details, ok := validationDetails(err); ok {
		return http.StatusBadRequest, Response{Error: messageValidation, Details: details}
	}

	var dataErr *DataError
	if errors.As(err, &dataErr) {
		return http.StatusBadRequest, Response{Error: dataErr.Message, Code: dataErr.Code}
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status, Response{Error: appErr.Message}
	}

	resp := Response{Error: messageInternal}
	if err != nil && err.Error() != "" {
		resp.Error = err.Error()
	}
	if !production {
		resp.Stack = stackOf(err)
	}
	return http.StatusInternalServerError, resp
}

// validationDetails はバリデーション由来のエラーからフィールド詳細を抽出する。
func validationDetails(err error) ([]FieldError, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: ruleMessage(fe),
			})
		}
		return details, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Expected %s, received %s", typeErr.Type.Kind(), typeErr.Value),
		}}, true
	}
	return nil, false
}

// fieldPath は "createFeedbackRequest.title" のような名前空間から構造体名を除いたパスを返す。
func fieldPath(namespace string) string {
	if _, rest, found := strings.Cut(namespace, "."); found {
		return rest
	}
	return namespace
}

// ruleMessage はバリデーションタグから人間が読めるメッセージを生成する。
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("Invalid enum value. Expected one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return "Invalid uuid"
	case "url", "http_url":
		return "Invalid url"
	case "email":
		return "Invalid email"
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}

// stackOf は開発用の診断情報を行単位で返す。
// パニック由来であれば回復時のスタック、それ以外はラップされたエラーの連鎖を返す。
func stackOf(err error) []string {
	if err == nil {
		return nil
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) && len(panicErr.Stack) > 0 {
		return strings.Split(strings.TrimRight(string(panicErr.Stack), "\n"), "\n")
	}

	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	return chain
}
