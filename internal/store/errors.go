package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nao1215/feedbackhub/pkg/apperror"
)

// mapError はドライバのエラーをパッケージのエラーに変換する。
//
// 行なしは ErrNotFound、入力値や制約に起因するエラー（Postgresのクラス22/23、
// SQLiteのCONSTRAINT）は *apperror.DataError に変換する。
// それ以外はそのまま返し、サーバーエラーとして扱う。
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23") {
			return &apperror.DataError{
				Code:    pgErr.Code,
				Message: pgErr.Message,
				Details: pgErr.Detail,
				Err:     err,
			}
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return &apperror.DataError{
			Code:    fmt.Sprintf("SQLITE_%d", liteErr.Code()),
			Message: liteErr.Error(),
			Err:     err,
		}
	}
	return err
}
