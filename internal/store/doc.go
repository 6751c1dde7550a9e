// Package store はプロジェクト・フィードバック・投票の永続化を担当する。
//
// database/sql上に実装し、開発環境ではSQLite（modernc.org/sqlite）、
// 本番ではPostgres（pgx）を使用する。SQLは両方で動く構文（$N プレースホルダ、
// ON CONFLICT ... DO UPDATE）に限定する。所有者チェックはWHERE句で行い、
// 該当行がない場合は存在しない場合と区別せず ErrNotFound を返す。
package store
