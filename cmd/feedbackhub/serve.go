package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/feedbackhub/internal/server"
	"github.com/nao1215/feedbackhub/internal/store"
)

// newServeCmd はHTTPサーバーを起動するコマンドを生成する。
func newServeCmd(flags *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Pending migrations are applied on startup. The server shuts down
gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, applied, err := openDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			logger.Info().Int("applied", applied).Msg("マイグレーションを確認しました")

			provider, devTokens, err := newIdentity(ctx, cfg, db)
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				collectors.NewDBStatsCollector(db, cfg.Database.Driver),
			)

			srv := server.New(server.Deps{
				Store:          store.New(db, logger),
				Identity:       provider,
				DevTokens:      devTokens,
				Logger:         logger,
				Registry:       registry,
				AllowedOrigins: []string{cfg.Server.FrontendURL},
				Production:     cfg.IsProduction(),
			})

			logger.Info().
				Str("environment", cfg.Environment).
				Str("database", cfg.Database.Driver).
				Str("auth_provider", cfg.Auth.Provider).
				Msg("feedbackhubを起動します")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx, cfg.Server.Addr())
			})
			g.Go(func() error {
				<-gctx.Done()
				if context.Cause(ctx) != nil {
					logger.Info().Msg("停止シグナルを受信しました")
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			logger.Info().Msg("feedbackhubを停止しました")
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "server host address (default: SERVER_HOST or 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (default: SERVER_PORT or 8080)")
	return cmd
}
