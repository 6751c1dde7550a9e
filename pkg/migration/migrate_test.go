package migration

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// openTestDB はテスト用のインメモリSQLiteを開く。
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testFS はテスト用のマイグレーションファイル群。
func testFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/000002_add_votes.up.sql":   {Data: []byte(`CREATE TABLE votes (id TEXT PRIMARY KEY);`)},
		"migrations/000001_init.up.sql":        {Data: []byte(`CREATE TABLE items (id TEXT PRIMARY KEY); CREATE INDEX idx_items_id ON items(id);`)},
		"migrations/000001_init.down.sql":      {Data: []byte(`DROP TABLE items;`)},
		"migrations/README.md":                 {Data: []byte(`not a migration`)},
		"migrations/latest_broken_name.up.sql": {Data: []byte(`SELECT 1;`)},
	}
}

// TestRun はマイグレーションの適用を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("未適用のマイグレーションをバージョン順に適用すること", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		n, err := Run(t.Context(), db, testFS(), "migrations", zerolog.Nop())
		if err != nil {
			t.Fatalf("Run()でエラーが発生: %v", err)
		}
		if n != 2 {
			t.Errorf("適用件数 = %d, want 2", n)
		}

		for _, table := range []string{"items", "votes"} {
			var name string
			err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
			if err != nil {
				t.Errorf("テーブル %s が作成されていない: %v", table, err)
			}
		}
	})

	t.Run("2回目の実行では何も適用しないこと", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		if _, err := Run(t.Context(), db, testFS(), "migrations", zerolog.Nop()); err != nil {
			t.Fatalf("1回目のRun()でエラーが発生: %v", err)
		}
		n, err := Run(t.Context(), db, testFS(), "migrations", zerolog.Nop())
		if err != nil {
			t.Fatalf("2回目のRun()でエラーが発生: %v", err)
		}
		if n != 0 {
			t.Errorf("適用件数 = %d, want 0", n)
		}
	})

	t.Run("失敗したマイグレーションはロールバックされること", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"m/000001_ok.up.sql":     {Data: []byte(`CREATE TABLE ok_table (id TEXT);`)},
			"m/000002_broken.up.sql": {Data: []byte(`CREATE TABLE broken (`)},
		}
		db := openTestDB(t)
		n, err := Run(t.Context(), db, fsys, "m", zerolog.Nop())
		if err == nil {
			t.Fatal("Run()がエラーを返すべきだが、nilが返った")
		}
		if n != 1 {
			t.Errorf("適用件数 = %d, want 1", n)
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
			t.Fatalf("schema_migrationsの取得に失敗: %v", err)
		}
		if count != 1 {
			t.Errorf("記録されたバージョン数 = %d, want 1", count)
		}
	})
}

// TestCollectMigrations はファイル収集の規則を検証する。
func TestCollectMigrations(t *testing.T) {
	t.Parallel()

	got, err := collectMigrations(testFS(), "migrations")
	if err != nil {
		t.Fatalf("collectMigrations()でエラーが発生: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("収集件数 = %d, want 2", len(got))
	}
	if got[0].version != 1 || got[0].name != "init" || got[0].path != "migrations/000001_init.up.sql" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].version != 2 || got[1].name != "add_votes" {
		t.Errorf("got[1] = %+v", got[1])
	}
}
