// Package config はサーバー全体の設定を環境変数（と任意の.envファイル）から読み込みます。
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/platform/db"
	"blog_backend/internal/platform/redis"
)

// DevSecret は秘密鍵が未設定のときに使う開発用の値です。本番では必ず上書きしてください。
const DevSecret = "dev-insecure-secret-change-me"

// Config はアプリケーション設定です。
type Config struct {
	Port               string
	GinMode            string
	CORSAllowedOrigins []string

	JWTSecret string
	TokenTTL  time.Duration

	BcryptCost     int
	AuthRatePerMin int

	DB    db.Config
	Redis redis.Config
}

// IsProduction はGIN_MODE=releaseのときtrueです。
func (c Config) IsProduction() bool {
	return c.GinMode == "release"
}

// LoadDotEnv はpathsの.envファイルを読み込みます（既存の環境変数は上書きしません）。
// ファイルが存在しない場合は何もしません。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		slog.Info("loaded env file", "path", p)
	}
	return nil
}

// Load は環境変数から設定を読み込みます。
func Load() Config {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            os.Getenv("GIN_MODE"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		JWTSecret:          firstNonEmpty(os.Getenv("SECRET_KEY"), os.Getenv("JWT_SECRET")),
		TokenTTL:           time.Hour,
		BcryptCost:         bcrypt.DefaultCost,
		AuthRatePerMin:     30,
		DB:                 db.LoadConfigFromEnv(),
		Redis:              redis.LoadConfigFromEnv(),
	}

	if cfg.JWTSecret == "" {
		// JWT_SECRETチェック（開発中の注意喚起）
		slog.Warn("SECRET_KEY is not set; using the development default. Set a strong secret in production.")
		cfg.JWTSecret = DevSecret
	}
	if v, err := time.ParseDuration(os.Getenv("TOKEN_TTL")); err == nil && v > 0 {
		cfg.TokenTTL = v
	}
	if v, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil && v >= bcrypt.MinCost && v <= bcrypt.MaxCost {
		cfg.BcryptCost = v
	}
	if v, err := strconv.Atoi(os.Getenv("AUTH_RATE_PER_MIN")); err == nil && v >= 0 {
		cfg.AuthRatePerMin = v
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitList はカンマ区切りの値を空要素を除いて分割します。
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
