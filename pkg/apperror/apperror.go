package apperror

import (
	"fmt"
	"net/http"
)

// Error はHTTPステータスを明示したアプリケーションエラー。
type Error struct {
	// Status はクライアントに返すHTTPステータスコード。
	Status int
	// Message はクライアントに返すエラーメッセージ。
	Message string
	// Err は原因となったエラー。ログ出力にのみ使用する。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap は原因エラーを返す。
func (e *Error) Unwrap() error {
	return e.Err
}

// New は指定ステータスのアプリケーションエラーを生成する。
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap は原因エラーを保持したアプリケーションエラーを生成する。
func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

// Unauthenticated は認証失敗（401）を表すエラーを生成する。
func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// NotFound は404エラーを生成する。
// 所有者以外からのアクセスも存在しない場合と同じく404として扱う。
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// InvalidInput は不正な入力値（400）を表すエラーを生成する。
func InvalidInput(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// DataError はデータストア（Postgres等）が返したエラー。
// プロバイダ固有のエラーコードを保持し、400としてクライアントに返す。
type DataError struct {
	// Code はプロバイダのエラーコード（例: Postgresの "23503"）。
	Code string
	// Message はプロバイダのエラーメッセージ。
	Message string
	// Details は追加情報。
	Details string
	// Err は元のドライバエラー。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *DataError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (code=%s): %s", e.Message, e.Code, e.Details)
	}
	return fmt.Sprintf("%s (code=%s)", e.Message, e.Code)
}

// Unwrap は元のドライバエラーを返す。
func (e *DataError) Unwrap() error {
	return e.Err
}

// PanicError はハンドラ内で発生したパニックを表す。
// 回復時点のスタックトレースを保持する。
type PanicError struct {
	// Value はrecover()で得られた値。
	Value any
	// Stack はパニック発生時のスタックトレース。
	Stack []byte
}

// Error はerrorインターフェースを実装する。
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
