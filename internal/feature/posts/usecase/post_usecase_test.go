package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	authusecase "blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/feature/posts/domain/entity"
)

type mockPostRepository struct {
	CreateFunc      func(ctx context.Context, post *entity.Post) error
	ListByOwnerFunc func(ctx context.Context, userID uint) ([]entity.Post, error)
	DeleteOwnedFunc func(ctx context.Context, id, userID uint) error
	creates         int
}

func (m *mockPostRepository) Create(ctx context.Context, post *entity.Post) error {
	m.creates++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, post)
	}
	post.ID = 1
	return nil
}

func (m *mockPostRepository) ListByOwner(ctx context.Context, userID uint) ([]entity.Post, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, userID)
	}
	return []entity.Post{}, nil
}

func (m *mockPostRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	if m.DeleteOwnedFunc != nil {
		return m.DeleteOwnedFunc(ctx, id, userID)
	}
	return nil
}

// mockUserResolver は登録済みのメールアドレスだけを解決します。
type mockUserResolver struct {
	users map[string]uint
	err   error
}

func (m *mockUserResolver) ResolveSubject(ctx context.Context, email string) (*authentity.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	id, ok := m.users[email]
	if !ok {
		return nil, authusecase.ErrUserNotFound
	}
	return &authentity.User{ID: id, Email: email}, nil
}

func newResolver() *mockUserResolver {
	return &mockUserResolver{users: map[string]uint{"alice@example.com": 1, "bob@example.com": 2}}
}

func TestValidateText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want error
	}{
		{"single character", "a", nil},
		{"exactly at limit", strings.Repeat("a", entity.MaxTextBytes), nil},
		{"one byte over", strings.Repeat("a", entity.MaxTextBytes+1), ErrPayloadTooLarge},
		{"multibyte counted in bytes", strings.Repeat("あ", entity.MaxTextBytes/3+1), ErrPayloadTooLarge},
		{"empty", "", ErrInvalidInput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateText(tt.text)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPostUsecase_CreatePost(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	t.Run("stamps the post with the current unix time", func(t *testing.T) {
		repo := &mockPostRepository{
			CreateFunc: func(ctx context.Context, post *entity.Post) error {
				post.ID = 10
				return nil
			},
		}
		uc := NewPostUsecase(repo, newResolver())
		uc.now = func() time.Time { return fixed }

		post, err := uc.CreatePost(context.Background(), "alice@example.com", "hello")

		require.NoError(t, err)
		assert.Equal(t, uint(10), post.ID)
		assert.Equal(t, uint(1), post.UserID)
		assert.Equal(t, "hello", post.Text)
		assert.Equal(t, fixed.Unix(), post.Timestamp)
	})

	t.Run("oversized text is rejected before any write", func(t *testing.T) {
		repo := &mockPostRepository{}
		uc := NewPostUsecase(repo, newResolver())

		_, err := uc.CreatePost(context.Background(), "alice@example.com", strings.Repeat("a", entity.MaxTextBytes+1))

		assert.ErrorIs(t, err, ErrPayloadTooLarge)
		assert.Zero(t, repo.creates)
	})

	t.Run("deleted user is unauthorized", func(t *testing.T) {
		repo := &mockPostRepository{}
		uc := NewPostUsecase(repo, newResolver())

		_, err := uc.CreatePost(context.Background(), "ghost@example.com", "hello")

		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Zero(t, repo.creates)
	})

	t.Run("resolver failure is not unauthorized", func(t *testing.T) {
		resolver := newResolver()
		resolver.err = errors.New("db down")
		uc := NewPostUsecase(&mockPostRepository{}, resolver)

		_, err := uc.CreatePost(context.Background(), "alice@example.com", "hello")

		assert.ErrorIs(t, err, resolver.err)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("owner removed between resolve and insert is unauthorized", func(t *testing.T) {
		repo := &mockPostRepository{CreateFunc: func(ctx context.Context, post *entity.Post) error { return ErrUnauthorized }}
		uc := NewPostUsecase(repo, newResolver())

		_, err := uc.CreatePost(context.Background(), "alice@example.com", "hello")

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		dbErr := errors.New("insert failed")
		repo := &mockPostRepository{CreateFunc: func(ctx context.Context, post *entity.Post) error { return dbErr }}
		uc := NewPostUsecase(repo, newResolver())

		_, err := uc.CreatePost(context.Background(), "alice@example.com", "hello")

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestPostUsecase_ListPosts(t *testing.T) {
	t.Run("lists only the caller's posts", func(t *testing.T) {
		var askedFor uint
		repo := &mockPostRepository{
			ListByOwnerFunc: func(ctx context.Context, userID uint) ([]entity.Post, error) {
				askedFor = userID
				return []entity.Post{{ID: 3, UserID: userID, Text: "x", Timestamp: 1}}, nil
			},
		}
		uc := NewPostUsecase(repo, newResolver())

		posts, err := uc.ListPosts(context.Background(), "bob@example.com")

		require.NoError(t, err)
		assert.Equal(t, uint(2), askedFor)
		require.Len(t, posts, 1)
		assert.Equal(t, uint(3), posts[0].ID)
	})

	t.Run("deleted user is unauthorized", func(t *testing.T) {
		uc := NewPostUsecase(&mockPostRepository{}, newResolver())

		_, err := uc.ListPosts(context.Background(), "ghost@example.com")

		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestPostUsecase_DeletePost(t *testing.T) {
	t.Run("passes post id and owner id", func(t *testing.T) {
		repo := &mockPostRepository{
			DeleteOwnedFunc: func(ctx context.Context, id, userID uint) error {
				assert.Equal(t, uint(5), id)
				assert.Equal(t, uint(1), userID)
				return nil
			},
		}
		uc := NewPostUsecase(repo, newResolver())

		assert.NoError(t, uc.DeletePost(context.Background(), "alice@example.com", 5))
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockPostRepository{
			DeleteOwnedFunc: func(ctx context.Context, id, userID uint) error { return ErrPostNotFound },
		}
		uc := NewPostUsecase(repo, newResolver())

		assert.ErrorIs(t, uc.DeletePost(context.Background(), "alice@example.com", 5), ErrPostNotFound)
	})

	t.Run("deleted user is unauthorized", func(t *testing.T) {
		uc := NewPostUsecase(&mockPostRepository{}, newResolver())

		assert.ErrorIs(t, uc.DeletePost(context.Background(), "ghost@example.com", 5), ErrUnauthorized)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		dbErr := errors.New("lock timeout")
		repo := &mockPostRepository{
			DeleteOwnedFunc: func(ctx context.Context, id, userID uint) error { return dbErr },
		}
		uc := NewPostUsecase(repo, newResolver())

		err := uc.DeletePost(context.Background(), "alice@example.com", 5)

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrPostNotFound)
	})
}
