// Package adapters はpostsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/db"
)

// postGorm はPostRepositoryインターフェースのGORM実装です。
type postGorm struct {
	db *gorm.DB
}

var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostRepository は指定されたgorm.DB接続でpostGormの新しいインスタンスを生成します。
func NewPostRepository(db *gorm.DB) *postGorm {
	return &postGorm{db: db}
}

// Create は投稿を1行追加します。Ownerアソシエーションは保存しません。
// 所有者が解決後に削除されていた場合は外部キー違反になり、usecase.ErrUnauthorizedを返します。
func (r *postGorm) Create(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return errors.New("post is nil")
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return usecase.ErrUnauthorized
		}
		return err
	}
	return nil
}

// ListByOwner はuserIDの投稿をtimestamp, idの昇順で返します。該当なしは空スライスです。
func (r *postGorm) ListByOwner(ctx context.Context, userID uint) ([]entity.Post, error) {
	posts := make([]entity.Post, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "timestamp"}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// DeleteOwned は DELETE ... WHERE id = ? AND user_id = ? を1回だけ実行します。
func (r *postGorm) DeleteOwned(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entity.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}
