// Package identity は利用者の身元（Identity）を扱う認証基盤クライアントを提供する。
//
// Bearerトークンの検証（Verifier）と、管理者権限でのアカウント操作（Admin）を
// インターフェースとして定義する。本番ではSupabase Auth（GoTrue）のREST APIを、
// 開発・テストではHS256署名のJWTとローカルのusersテーブルを使用する。
// トークンの解析や署名検証はこのパッケージの実装に閉じ込め、HTTPミドルウェアは
// 検証結果に対する振る舞いだけを決定する。
package identity
