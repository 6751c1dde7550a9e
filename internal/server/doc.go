// Package server はfeedbackhubのHTTP APIサーバーを提供する。
//
// フィードバック・投票・プロジェクト・APIキー・アカウントのエンドポイントを持つ。
// 認証はBearerトークンを identity.Verifier で検証して行い、
// データはすべて store.Store に委譲する。
// ハンドラはエラーを c.Error で登録するだけで、レスポンスへの変換は
// middleware.ErrorHandler が一箇所で行う。
package server
