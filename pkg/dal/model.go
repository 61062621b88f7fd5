package dal

import (
	"time"

	"gorm.io/gorm"
)

// Model 基础模型
type Model struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// QueryOption 查询选项
type QueryOption func(*gorm.DB) *gorm.DB

// WithPreload 预加载关联
func WithPreload(query string, args ...any) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(query, args...) }
}

// WithOrder 排序
func WithOrder(order string) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Order(order) }
}

// WithSelect 选择字段
func WithSelect(fields ...string) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Select(fields) }
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}
