package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	authusecase "blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/feature/posts/domain/entity"
)

// PostRepository は投稿の永続化層を抽象化します。
type PostRepository interface {
	// Create は投稿を保存し、採番されたIDをpostに設定します。
	Create(ctx context.Context, post *entity.Post) error
	// ListByOwner は指定ユーザーの投稿を作成順（timestamp, idの昇順）で返します。
	ListByOwner(ctx context.Context, userID uint) ([]entity.Post, error)
	// DeleteOwned はidとuserIDの両方が一致する投稿を1文で削除します。
	// 一致する行がない場合はErrPostNotFoundを返します。
	DeleteOwned(ctx context.Context, id, userID uint) error
}

// UserResolver は検証済みトークンのsubjectをユーザーに解決します。
type UserResolver interface {
	ResolveSubject(ctx context.Context, email string) (*authentity.User, error)
}

// ValidateText は投稿本文が空でなく、MaxTextBytes以下であることを確認します。
func ValidateText(text string) error {
	if text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if len(text) > entity.MaxTextBytes {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrPayloadTooLarge, len(text), entity.MaxTextBytes)
	}
	return nil
}

type postUsecase struct {
	posts PostRepository
	users UserResolver
	now   func() time.Time
}

// NewPostUsecase はpostUsecaseの新しいインスタンスを生成します。
func NewPostUsecase(posts PostRepository, users UserResolver) *postUsecase {
	return &postUsecase{posts: posts, users: users, now: time.Now}
}

// resolveOwner はsubjectのユーザーを取得します。ユーザーが削除済みならErrUnauthorizedです。
func (u *postUsecase) resolveOwner(ctx context.Context, subject string) (*authentity.User, error) {
	user, err := u.users.ResolveSubject(ctx, subject)
	if err != nil {
		if errors.Is(err, authusecase.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

// CreatePost は認証済みユーザーの投稿を作成します。サイズ超過の本文は書き込み前に拒否します。
func (u *postUsecase) CreatePost(ctx context.Context, subject, text string) (*entity.Post, error) {
	user, err := u.resolveOwner(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	post := &entity.Post{UserID: user.ID, Text: text, Timestamp: u.now().Unix()}
	if err := u.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// ListPosts は認証済みユーザー自身の投稿のみを返します。
func (u *postUsecase) ListPosts(ctx context.Context, subject string) ([]entity.Post, error) {
	user, err := u.resolveOwner(ctx, subject)
	if err != nil {
		return nil, err
	}

	posts, err := u.posts.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// DeletePost は所有者本人の投稿のみを削除します。
// 存在しない投稿と他人の投稿はどちらもErrPostNotFoundになります。
func (u *postUsecase) DeletePost(ctx context.Context, subject string, postID uint) error {
	user, err := u.resolveOwner(ctx, subject)
	if err != nil {
		return err
	}

	if err := u.posts.DeleteOwned(ctx, postID, user.ID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
