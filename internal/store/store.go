package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nao1215/feedbackhub/pkg/migration"
)

// ErrNotFound は対象の行が存在しない、または呼び出し元が所有していないことを表す。
var ErrNotFound = errors.New("not found")

// Driver はデータベースの種類。
type Driver string

// 対応しているデータベース。
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

//go:embed migrations
var migrationsFS embed.FS

// sqlitePragmas はSQLite接続ごとに適用するPRAGMA。
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Open はデータベース接続を開く。
// SQLiteは書き込みの競合を避けるため接続を1本に制限する。
func Open(driver Driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "_pragma=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + sqlitePragmas
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("データベース接続に失敗: %w", err)
		}
		db.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres:
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("データベース接続に失敗: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("未対応のデータベースドライバ: %q", driver)
	}
}

// Migrate はドライバに対応するマイグレーションを適用する。
func Migrate(ctx context.Context, db *sql.DB, driver Driver, logger zerolog.Logger) (int, error) {
	return migration.Run(ctx, db, migrationsFS, "migrations/"+string(driver), logger)
}

// Store はSQLデータベース上の行ストア。
// *sql.DBは並行利用可能なため、1つのStoreを全リクエストで共有する。
type Store struct {
	// db はデータベース接続。
	db *sql.DB
	// logger はコンポーネントのロガー。
	logger zerolog.Logger
}

// New は新しいStoreを生成する。
func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DeleteAccountData は利用者が所有・投稿したデータをまとめて削除する。
// 所有プロジェクト（配下のフィードバックと投票を含む）、自身の投稿、自身の投票が対象。
func (s *Store) DeleteAccountData(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	statements := []string{
		`DELETE FROM feedback_votes WHERE voter_id = $1`,
		`DELETE FROM projects WHERE user_id = $1`,
		`DELETE FROM feedback WHERE user_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return mapError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("アカウントのデータを削除しました")
	return nil
}

// affectedOne は更新・削除の結果が1行以上であることを確認する。
func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// setClause はUPDATE文のSET句を組み立てる。
type setClause struct {
	columns []string
	args    []any
}

func (c *setClause) add(column string, value any) {
	c.args = append(c.args, value)
	c.columns = append(c.columns, fmt.Sprintf("%s = $%d", column, len(c.args)))
}

// next は次のプレースホルダ番号を返し、値を引数に追加する。
func (c *setClause) next(value any) string {
	c.args = append(c.args, value)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *setClause) String() string {
	return strings.Join(c.columns, ", ")
}

// nullable はポインタ型の値をドライバに渡せる値（nilまたはstring）に変換する。
func nullable[T ~string](p *T) any {
	if p == nil {
		return nil
	}
	return string(*p)
}
