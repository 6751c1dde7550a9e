// Package httpclient は外部のHTTP JSON APIを呼び出すクライアントを提供する。
//
// 認証基盤（Supabase Auth）への問い合わせなど、バックエンドサービスとの
// 通信パターンを統一する。非2xxレスポンスは *StatusError として返す。
package httpclient
