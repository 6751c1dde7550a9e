// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Bearerトークンによる認証ゲート、エラーレスポンスの正規化、
// リクエストログ、パニックリカバリ、CORS設定、HTTPメトリクスを含む。
package middleware
