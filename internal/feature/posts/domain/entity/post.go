package entity

import (
	authentity "blog_backend/internal/feature/auth/domain/entity"
)

// MaxTextBytes is the largest accepted post body, measured in UTF-8 bytes.
const MaxTextBytes = 1 << 20

// Post は投稿エンティティを表します。作成後に更新されることはありません。
type Post struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index"`
	// MySQLではmediumtext、PostgreSQLではvarcharになります。
	Text string `gorm:"size:1048576;not null"`
	// Timestamp is the creation time in Unix seconds.
	Timestamp int64 `gorm:"not null"`

	// Owner exists only to declare the foreign key; it is never loaded.
	Owner *authentity.User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName はPostエンティティのテーブル名を指定します。
func (Post) TableName() string {
	return "posts"
}
