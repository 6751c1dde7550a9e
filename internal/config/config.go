package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 実行環境。
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// 認証基盤の種類。
const (
	AuthProviderLocal    = "local"
	AuthProviderSupabase = "supabase"
)

// Config はアプリケーション全体の設定。
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Logging     LoggingConfig
	Environment string
}

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	Host string
	Port int
	// FrontendURL はCORSで許可するダッシュボードのオリジン。
	FrontendURL string
}

// Addr は待ち受けアドレスを返す。
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig は行ストアの設定。
type DatabaseConfig struct {
	// Driver は sqlite または postgres。
	Driver string
	URL    string
}

// AuthConfig は認証基盤の設定。
type AuthConfig struct {
	// Provider は local または supabase。
	Provider               string
	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	// JWTSecret と JWTExpiry はlocalプロバイダでのみ使用する。
	JWTSecret string
	JWTExpiry time.Duration
}

// LoggingConfig はロガーの設定。
type LoggingConfig struct {
	Level  string
	Format string
}

// developmentJWTSecret は開発環境でJWT_SECRET未設定時に使う固定値。
const developmentJWTSecret = "feedbackhub-development-secret"

// Load は .env と環境変数から設定を読み込み、検証する。
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}

	cfg := Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvInt("SERVER_PORT", 8080),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite"),
			URL:    getEnv("DATABASE_URL", "file:feedbackhub.db"),
		},
		Auth: AuthConfig{
			Provider:               getEnv("AUTH_PROVIDER", AuthProviderLocal),
			SupabaseURL:            getEnv("SUPABASE_URL", ""),
			SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
			SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			JWTSecret:              getEnv("JWT_SECRET", ""),
			JWTExpiry:              time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", EnvDevelopment),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction は本番環境かどうかを返す。
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT が不正です: %q", c.Environment)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER が不正です: %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	switch c.Auth.Provider {
	case AuthProviderSupabase:
		var missing []string
		if c.Auth.SupabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.Auth.SupabaseAnonKey == "" {
			missing = append(missing, "SUPABASE_ANON_KEY")
		}
		if c.Auth.SupabaseServiceRoleKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s is required", strings.Join(missing, ", "))
		}
	case AuthProviderLocal:
		if c.Auth.JWTSecret == "" {
			if c.IsProduction() {
				return errors.New("JWT_SECRET is required")
			}
			c.Auth.JWTSecret = developmentJWTSecret
		}
		if c.Auth.JWTExpiry <= 0 {
			return errors.New("JWT_EXPIRY_HOURS must be positive")
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER が不正です: %q", c.Auth.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
