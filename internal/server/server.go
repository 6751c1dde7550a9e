package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nao1215/feedbackhub/internal/apikey"
	"github.com/nao1215/feedbackhub/internal/store"
	"github.com/nao1215/feedbackhub/pkg/identity"
	"github.com/nao1215/feedbackhub/pkg/middleware"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 10 * time.Second

// DevTokenIssuer は開発用トークンを発行する認証基盤。
type DevTokenIssuer interface {
	EnsureUser(ctx context.Context, email string) (*identity.User, error)
	IssueToken(user *identity.Identity) (string, error)
}

// Deps はServerが利用する外部コンポーネント。
type Deps struct {
	// Store はプロジェクト・フィードバック・投票の行ストア。
	Store *store.Store
	// Identity はトークン検証とアカウント管理を行う認証基盤。
	Identity identity.Provider
	// DevTokens は開発用トークンの発行元。nilまたは本番環境では無効。
	DevTokens DevTokenIssuer
	// Logger はアプリケーションのロガー。
	Logger zerolog.Logger
	// Registry は /metrics で公開するPrometheusレジストリ。nilなら新規に生成する。
	Registry *prometheus.Registry
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// Production は本番環境で動作しているかどうか。
	Production bool
}

// Server はfeedbackhubのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// store は行ストア。
	store *store.Store
	// identity は認証基盤。
	identity identity.Provider
	// keys はAPIキーの管理。
	keys *apikey.Service
	// devTokens は開発用トークンの発行元。
	devTokens DevTokenIssuer
	// registry はメトリクスのレジストリ。
	registry *prometheus.Registry
	// logger はサーバーのロガー。
	logger zerolog.Logger
	// production は本番環境かどうか。
	production bool
	// now は現在時刻を返す。
	now func() time.Time
}

// New は新しいServerを生成し、ルーティングを設定する。
func New(deps Deps) *Server {
	registerValidation()

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	s := &Server{
		router:     gin.New(),
		store:      deps.Store,
		identity:   deps.Identity,
		keys:       apikey.NewService(deps.Identity, deps.Logger),
		devTokens:  deps.DevTokens,
		registry:   registry,
		logger:     deps.Logger.With().Str("component", "server").Logger(),
		production: deps.Production,
		now:        time.Now,
	}
	s.setupRoutes(deps.Logger, deps.AllowedOrigins)
	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTPサーバーを起動します")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("HTTPサーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes(logger zerolog.Logger, allowedOrigins []string) {
	metrics := middleware.NewMetrics(s.registry)

	s.router.Use(
		middleware.RequestLogger(logger),
		metrics.Handler(),
		middleware.ErrorHandler(s.production),
		middleware.Recovery(),
		middleware.CORS(allowedOrigins),
	)

	requireAuth := middleware.RequireAuth(s.identity)
	optionalAuth := middleware.OptionalAuth(s.identity)

	feedback := s.router.Group("/feedback")
	{
		// フィードバック一覧取得
		feedback.GET("", optionalAuth, s.handleListFeedback())
		// フィードバック詳細取得
		feedback.GET("/:id", optionalAuth, s.handleGetFeedback())
		// フィードバック投稿（匿名可）
		feedback.POST("", optionalAuth, s.handleCreateFeedback())
		// フィードバック更新（投稿者のみ）
		feedback.PATCH("/:id", requireAuth, s.handleUpdateFeedback())
		// フィードバック削除（投稿者のみ）
		feedback.DELETE("/:id", requireAuth, s.handleDeleteFeedback())
		// 投票（匿名可）
		feedback.POST("/:id/vote", optionalAuth, s.handleVote())
		// 対応状況の変更（プロジェクト所有者のみ）
		feedback.PATCH("/:id/status", requireAuth, s.handleSetFeedbackStatus())
	}

	projects := s.router.Group("/projects", requireAuth)
	{
		projects.GET("", s.handleListProjects())
		projects.POST("", s.handleCreateProject())
		projects.GET("/:id", s.handleGetProject())
		projects.PATCH("/:id", s.handleUpdateProject())
		projects.DELETE("/:id", s.handleDeleteProject())
	}

	keys := s.router.Group("/api-keys", requireAuth)
	{
		// マスク済みのキー
		keys.GET("", s.handleGetAPIKey())
		// 平文のキー
		keys.GET("/show", s.handleShowAPIKey())
		// キーの再発行
		keys.POST("/regenerate", s.handleRegenerateAPIKey())
	}

	s.router.GET("/me", requireAuth, s.handleMe())
	s.router.DELETE("/account", requireAuth, s.handleDeleteAccount())

	if s.devTokens != nil && !s.production {
		s.router.POST("/auth/dev-token", s.handleDevToken())
	}

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())
	s.router.GET("/health/ready", s.handleReady())
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})))
}
