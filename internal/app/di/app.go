// Package di はリポジトリ・ユースケース・ハンドラーを組み立てます。
package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"blog_backend/internal/app/router"
	authadapters "blog_backend/internal/feature/auth/adapters"
	authentity "blog_backend/internal/feature/auth/domain/entity"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authusecase "blog_backend/internal/feature/auth/usecase"
	postentity "blog_backend/internal/feature/posts/domain/entity"
	postshandler "blog_backend/internal/feature/posts/transport/handler"
	postsusecase "blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/config"
	platformhandler "blog_backend/internal/platform/http/handler"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/ratelimiter"
)

// Models はマイグレーション対象のモデルを依存順に返します。
func Models() []any {
	return []any{&authentity.User{}, &postentity.Post{}}
}

// NewEngine は設定とDB・Redis接続からHTTPエンジンを組み立てます。rdbはnilでも構いません。
func NewEngine(cfg config.Config, db *gorm.DB, rdb *redis.Client, logger *slog.Logger) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Token
	tokens := jwtmw.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	postRepo := NewPostRepository(rdb, db, cfg.Redis.CacheTTL)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, tokens, cfg.BcryptCost)
	postsUC := postsusecase.NewPostUsecase(postRepo, authUC)

	// Handler
	checks := []platformhandler.Check{{Name: "database", Ping: sqlDB.PingContext}}
	if rdb != nil {
		checks = append(checks, platformhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	handlers := router.Handlers{
		Health: platformhandler.NewHealthHandler(2*time.Second, checks...),
		Auth:   authhandler.NewAuthHandler(authUC),
		Posts:  postshandler.NewPostHandler(postsUC),
	}

	opts := router.Options{
		Logger:             logger,
		Verifier:           tokens,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.AuthRatePerMin > 0 {
		opts.AuthLimiter = ratelimiter.NewKeyedLimiter(cfg.AuthRatePerMin, 10*time.Minute)
	}

	return router.NewRouter(handlers, opts), nil
}
