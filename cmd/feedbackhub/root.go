package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nao1215/feedbackhub/internal/config"
	"github.com/nao1215/feedbackhub/internal/server"
	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/identity"
)

// globalFlags は全サブコマンド共通のフラグ。
type globalFlags struct {
	logLevel  string
	logFormat string
}

// newRootCmd はルートコマンドを生成する。
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "feedbackhub",
		Short:         "feedbackhub - feedback and feature request API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (json, console) (default: LOG_FORMAT or json)")

	root.AddCommand(newServeCmd(flags), newMigrateCmd(flags), newTokenCmd(flags))
	return root
}

// load は設定を読み込み、フラグで上書きしてロガーを生成する。
func (f *globalFlags) load() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}
	return cfg, config.NewLogger(cfg.Logging), nil
}

// openDatabase はデータベースを開き、マイグレーションを適用する。
// 今回適用したマイグレーションの件数も返す。
func openDatabase(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*sql.DB, int, error) {
	driver := store.Driver(cfg.Database.Driver)
	db, err := store.Open(driver, cfg.Database.URL)
	if err != nil {
		return nil, 0, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, 0, fmt.Errorf("データベースに接続できません: %w", err)
	}
	applied, err := store.Migrate(ctx, db, driver, logger)
	if err != nil {
		_ = db.Close()
		return nil, 0, err
	}
	return db, applied, nil
}

// newIdentity は設定に対応する認証基盤を生成する。
// ローカル認証基盤の場合は開発用トークンの発行元も返す。
func newIdentity(ctx context.Context, cfg config.Config, db *sql.DB) (identity.Provider, server.DevTokenIssuer, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderSupabase:
		return identity.NewGoTrue(cfg.Auth.SupabaseURL, cfg.Auth.SupabaseAnonKey, cfg.Auth.SupabaseServiceRoleKey), nil, nil
	default:
		local, err := identity.NewLocal(ctx, db, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
		if err != nil {
			return nil, nil, fmt.Errorf("ローカル認証基盤の初期化に失敗: %w", err)
		}
		return local, local, nil
	}
}
