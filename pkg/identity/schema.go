package identity

import (
	"context"
	"database/sql"
	"fmt"
)

// ローカル認証用のスキーマ定義。SQLiteとPostgresの両方で実行できる構文に限定する。
const localSchema = `
CREATE TABLE IF NOT EXISTS auth_users (
    -- アカウントの一意識別子（JWTのsub）
    id TEXT PRIMARY KEY,
    -- メールアドレス
    email TEXT NOT NULL UNIQUE,
    -- メールアドレスの確認日時
    email_confirmed_at TIMESTAMP NULL,
    -- 任意のメタデータ（JSON文字列）
    user_metadata TEXT NOT NULL DEFAULT '{}',
    -- 作成日時
    created_at TIMESTAMP NOT NULL
);
`

// initSchema はローカル認証用のテーブルを作成する。
func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, localSchema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
