package dal

import (
	"context"
	"errors"

	"github.com/orgadmin/pkg/database"
	"github.com/orgadmin/pkg/ssql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 通用仓储接口，查询条件使用 ssql 表达式，nil 表示不过滤
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	FindByID(ctx context.Context, id int64, opts ...QueryOption) (*T, error)
	FindOne(ctx context.Context, expr ssql.Expression, opts ...QueryOption) (*T, error)
	FindAll(ctx context.Context, expr ssql.Expression, opts ...QueryOption) ([]T, error)
	FindPage(ctx context.Context, expr ssql.Expression, p *Pagination, opts ...QueryOption) (*PagedResult[T], error)
	Count(ctx context.Context, expr ssql.Expression) (int64, error)
	Exists(ctx context.Context, expr ssql.Expression) (bool, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	DB() *gorm.DB
}

// BaseRepository 基础仓储实现
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewBaseRepository 使用全局连接创建基础仓储
func NewBaseRepository[T any]() *BaseRepository[T] {
	return &BaseRepository[T]{db: database.Get()}
}

// NewBaseRepositoryWithDB 使用指定DB创建基础仓储
func NewBaseRepositoryWithDB[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

// DB 获取数据库实例
func (r *BaseRepository[T]) DB() *gorm.DB {
	return r.db
}

// WithTx 返回绑定到事务的仓储
func (r *BaseRepository[T]) WithTx(tx *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: tx}
}

func (r *BaseRepository[T]) where(ctx context.Context, expr ssql.Expression) *gorm.DB {
	var entity T
	db := r.db.WithContext(ctx).Model(&entity)
	return db.Scopes(ssql.Scope(expr, ssql.DialectOf(r.db)))
}

// Create 创建实体，关联对象只通过外键引用，不级联写入
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error
}

// Save 保存实体(全字段更新)
func (r *BaseRepository[T]) Save(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error
}

// DeleteByIDs 按ID删除，返回删除行数
func (r *BaseRepository[T]) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var entity T
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&entity)
	return result.RowsAffected, result.Error
}

// FindByID 根据ID查找，不存在时返回 nil, nil
func (r *BaseRepository[T]) FindByID(ctx context.Context, id int64, opts ...QueryOption) (*T, error) {
	var entity T
	db := applyOptions(r.db.WithContext(ctx), opts)

	if err := db.Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// FindOne 查找第一条匹配记录
func (r *BaseRepository[T]) FindOne(ctx context.Context, expr ssql.Expression, opts ...QueryOption) (*T, error) {
	var entity T
	db := applyOptions(r.where(ctx, expr), opts)

	if err := db.First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// FindAll 查找所有匹配记录
func (r *BaseRepository[T]) FindAll(ctx context.Context, expr ssql.Expression, opts ...QueryOption) ([]T, error) {
	entities := make([]T, 0)
	db := applyOptions(r.where(ctx, expr), opts)

	if err := db.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindPage 分页查询
func (r *BaseRepository[T]) FindPage(ctx context.Context, expr ssql.Expression, p *Pagination, opts ...QueryOption) (*PagedResult[T], error) {
	if p == nil {
		p = NewPagination(1, DefaultPageSize)
	}
	p.Normalize()

	sort, err := ParseSort(p.Sort)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.where(ctx, expr).Count(&total).Error; err != nil {
		return nil, err
	}

	entities := make([]T, 0)
	db := applyOptions(r.where(ctx, expr), opts).Scopes(OrderScope(sort))
	if err := db.Offset(p.Offset()).Limit(p.PageSize).Find(&entities).Error; err != nil {
		return nil, err
	}

	return NewPagedResult(entities, total, p), nil
}

// Count 统计数量
func (r *BaseRepository[T]) Count(ctx context.Context, expr ssql.Expression) (int64, error) {
	var count int64
	if err := r.where(ctx, expr).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists 检查是否存在
func (r *BaseRepository[T]) Exists(ctx context.Context, expr ssql.Expression) (bool, error) {
	count, err := r.Count(ctx, expr)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Transaction 执行事务
func (r *BaseRepository[T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Raw 执行原生SQL查询
func (r *BaseRepository[T]) Raw(ctx context.Context, sql string, values ...interface{}) *gorm.DB {
	return r.db.WithContext(ctx).Raw(sql, values...)
}
