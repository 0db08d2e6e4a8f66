// Package router はHTTPルーティングを組み立てます。
package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	postshandler "blog_backend/internal/feature/posts/transport/handler"
	platformhandler "blog_backend/internal/platform/http/handler"
	"blog_backend/internal/platform/http/middleware"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/ratelimiter"
)

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Health *platformhandler.HealthHandler
	Auth   *authhandler.AuthHandler
	Posts  *postshandler.PostHandler
}

// Options はルーターの横断的な設定です。
type Options struct {
	Logger *slog.Logger
	// Verifier はBearerトークンを検証します。必須です。
	Verifier jwtmw.Verifier
	// AuthLimiter はsignup/loginに適用されます。nilなら制限しません。
	AuthLimiter ratelimiter.Limiter
	// CORSAllowedOrigins が空ならCORSミドルウェアを登録しません。
	CORSAllowedOrigins []string
}

// NewRouter はすべてのルートを登録したgin.Engineを返します。
func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger))

	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(opts.CORSAllowedOrigins)))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not found"})
	})

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Live)
	r.HEAD("/healthz", h.Health.Live)
	r.OPTIONS("/healthz", h.Health.Live)
	r.GET("/readyz", h.Health.Ready)

	apiGroup := r.Group("/api")

	credentials := apiGroup.Group("")
	if opts.AuthLimiter != nil {
		credentials.Use(ratelimiter.Middleware(opts.AuthLimiter))
	}
	// 新規ユーザー登録
	credentials.POST("/signup", h.Auth.Signup)
	// ログイン（JWT 発行）
	credentials.POST("/login", h.Auth.Login)

	// 認証必須のルート
	// → リクエストヘッダーに Bearer トークンが必要になる
	authed := apiGroup.Group("")
	authed.Use(jwtmw.AuthRequired(opts.Verifier))
	{
		authed.POST("/post", h.Posts.CreatePost)
		authed.GET("/posts", h.Posts.ListPosts)
		authed.DELETE("/post/:post_id", h.Posts.DeletePost)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
