// Package apikey はプロジェクト連携用APIキーの発行・マスク表示・取得を提供する。
//
// キーは認証基盤のユーザーメタデータ（api_key）に保存し、
// 一覧表示ではマスクした値、明示的な取得操作でのみ平文を返す。
package apikey
