package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	postsadapters "blog_backend/internal/feature/posts/adapters"
	"blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/cache"
)

// NewPostRepository creates a PostRepository implementation.
// If Redis is available, the database repository is wrapped with the list cache.
// Otherwise, it uses the database directly.
func NewPostRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.PostRepository {
	repo := postsadapters.NewPostRepository(db)
	if rdb != nil {
		return cache.NewCachingPostRepository(rdb, ttl, repo, "posts")
	}
	return repo
}
