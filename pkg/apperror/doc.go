// Package apperror はHTTP APIで扱うエラーの分類と、統一されたエラーレスポンスへの変換を提供する。
//
// ハンドラやミドルウェアはエラーを握りつぶさずに返し、Normalize が唯一の変換点として
// ステータスコードとレスポンスボディを決定する。
package apperror
