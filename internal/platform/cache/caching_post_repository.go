// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
)

// DefaultTTL is used when the configured TTL is not positive.
const DefaultTTL = 5 * time.Minute

// CachingPostRepository decorates a PostRepository with a per-owner Redis cache of
// the post list. Each owner has a version counter and lists are cached under the
// version read before the database query. Writes go to the inner repository first
// and then bump the version, so a list loaded before a write can never be served
// after it.
type CachingPostRepository struct {
	inner     usecase.PostRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.PostRepository = (*CachingPostRepository)(nil)

// cachedPost is the JSON shape stored in Redis.
type cachedPost struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NewCachingPostRepository decorates a PostRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "posts".
// A nil rdb disables caching entirely.
func NewCachingPostRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PostRepository, namespace string) *CachingPostRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "posts"
	}
	return &CachingPostRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the post and moves the owner's cache to a new version.
func (c *CachingPostRepository) Create(ctx context.Context, post *entity.Post) error {
	if err := c.inner.Create(ctx, post); err != nil {
		return err
	}
	c.invalidate(ctx, post.UserID)
	return nil
}

// DeleteOwned deletes the post and moves the owner's cache to a new version.
func (c *CachingPostRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	if err := c.inner.DeleteOwned(ctx, id, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// ListByOwner returns the owner's posts, checking the cache first then falling back to the database.
func (c *CachingPostRepository) ListByOwner(ctx context.Context, userID uint) ([]entity.Post, error) {
	if c.rdb == nil {
		return c.inner.ListByOwner(ctx, userID)
	}

	// 1) Current version. Without it nothing is read from or written to the cache.
	version, err := c.version(ctx, userID)
	if err != nil {
		slog.Warn("post cache version lookup failed", "error", err, "user_id", userID)
		return c.inner.ListByOwner(ctx, userID)
	}
	key := c.cacheKey(userID, version)

	// 2) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var cached []cachedPost
		if err := json.Unmarshal(b, &cached); err == nil {
			return fromCache(cached), nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 3) Fallback to database
	posts, err := c.inner.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 4) Store under the version read in step 1 (best effort).
	// A write that happened meanwhile has moved readers to a newer key.
	if b, err := json.Marshal(toCache(posts)); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return posts, nil
}

// version returns the owner's cache version. A missing counter is version 0.
func (c *CachingPostRepository) version(ctx context.Context, userID uint) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// invalidate bumps the owner's version and drops the list cached under the previous one.
// Failures are logged, never returned: the write already succeeded.
func (c *CachingPostRepository) invalidate(ctx context.Context, userID uint) {
	if c.rdb == nil {
		return
	}
	version, err := c.rdb.Incr(ctx, c.versionKey(userID)).Result()
	if err != nil {
		slog.Warn("post cache invalidation failed", "error", err, "user_id", userID)
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(userID, version-1)).Err(); err != nil {
		slog.Warn("stale post cache entry not removed", "error", err, "user_id", userID)
	}
}

// versionKey is the per-owner counter incremented on every write.
func (c *CachingPostRepository) versionKey(userID uint) string {
	return fmt.Sprintf("%s:owner:%d:version", c.namespace, userID)
}

// cacheKey generates the cache key for one version of an owner's list.
func (c *CachingPostRepository) cacheKey(userID uint, version int64) string {
	return fmt.Sprintf("%s:owner:%d:v%d", c.namespace, userID, version)
}

func toCache(posts []entity.Post) []cachedPost {
	out := make([]cachedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, cachedPost{ID: p.ID, UserID: p.UserID, Text: p.Text, Timestamp: p.Timestamp})
	}
	return out
}

func fromCache(cached []cachedPost) []entity.Post {
	out := make([]entity.Post, 0, len(cached))
	for _, p := range cached {
		out = append(out, entity.Post{ID: p.ID, UserID: p.UserID, Text: p.Text, Timestamp: p.Timestamp})
	}
	return out
}
