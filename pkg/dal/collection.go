package dal

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/ssql"
	"gorm.io/gorm"
)

// ListParams 列表查询参数
type ListParams struct {
	Filter   string `query:"filter"`   // SSQL 过滤条件 例如: name ~ '研发' && available = true
	Sort     string `query:"sort"`     // 排序 例如: -sort,name
	Page     int    `query:"page"`     // 页码，从1开始
	PageSize int    `query:"pageSize"` // 每页数量
}

// Pagination 转换为分页参数
func (p *ListParams) Pagination() *Pagination {
	pg := &Pagination{Page: p.Page, PageSize: p.PageSize, Sort: p.Sort}
	pg.Normalize()
	return pg
}

// BindQuery 从 Fiber 上下文绑定查询参数
func BindQuery(ctx *fiber.Ctx) (*ListParams, error) {
	params := &ListParams{Page: 1, PageSize: DefaultPageSize}
	if err := ctx.QueryParser(params); err != nil {
		return nil, errors.BadRequest("查询参数错误")
	}
	return params, nil
}

// Collection 集合查询器: SSQL 过滤 + 排序白名单 + 分页
type Collection[T any] struct {
	repo         *BaseRepository[T]
	sortable     []string
	defaultSort  string
	filterable   []string
	queryOptions []QueryOption
}

// NewCollection 创建集合查询器
func NewCollection[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{
		repo:        NewBaseRepositoryWithDB[T](db),
		defaultSort: "-id",
	}
}

// WithSortable 设置允许排序的字段
func (c *Collection[T]) WithSortable(fields ...string) *Collection[T] {
	c.sortable = fields
	return c
}

// WithFilterable 设置允许过滤的字段
func (c *Collection[T]) WithFilterable(fields ...string) *Collection[T] {
	c.filterable = fields
	return c
}

// WithDefaultSort 设置默认排序
func (c *Collection[T]) WithDefaultSort(sort string) *Collection[T] {
	c.defaultSort = sort
	return c
}

// WithOptions 设置每次查询附加的选项，例如预加载
func (c *Collection[T]) WithOptions(opts ...QueryOption) *Collection[T] {
	c.queryOptions = opts
	return c
}

// ParseFilter 解析并检查过滤条件，空串返回 nil
// 外部传入的过滤条件不允许子查询
func (c *Collection[T]) ParseFilter(filter string) (ssql.Expression, error) {
	expr, err := ssql.Parse(filter)
	if err != nil {
		return nil, errors.BadRequest("过滤条件错误: " + err.Error())
	}
	if expr == nil {
		return nil, nil
	}
	fields, ok := fieldsOf(expr)
	if !ok {
		return nil, errors.BadRequest("过滤条件不支持子查询")
	}
	if len(c.filterable) > 0 {
		for _, field := range fields {
			if !slices.Contains(c.filterable, field) {
				return nil, errors.BadRequest("不允许过滤字段: " + field)
			}
		}
	}
	return expr, nil
}

// GetList 获取分页列表，base 与 filter 以 AND 组合
func (c *Collection[T]) GetList(ctx context.Context, params *ListParams, base ssql.Expression) (*PagedResult[T], error) {
	expr, err := c.ParseFilter(params.Filter)
	if err != nil {
		return nil, err
	}

	p := params.Pagination()
	if p.Sort == "" {
		p.Sort = c.defaultSort
	}
	if err := c.checkSort(p.Sort); err != nil {
		return nil, err
	}

	return c.repo.FindPage(ctx, ssql.And(base, expr), p, c.queryOptions...)
}

// GetFullList 获取全部列表（无分页）
func (c *Collection[T]) GetFullList(ctx context.Context, params *ListParams, base ssql.Expression) ([]T, error) {
	expr, err := c.ParseFilter(params.Filter)
	if err != nil {
		return nil, err
	}

	sort := params.Sort
	if sort == "" {
		sort = c.defaultSort
	}
	if err := c.checkSort(sort); err != nil {
		return nil, err
	}
	fields, err := ParseSort(sort)
	if err != nil {
		return nil, err
	}

	opts := append([]QueryOption{OrderScope(fields)}, c.queryOptions...)
	return c.repo.FindAll(ctx, ssql.And(base, expr), opts...)
}

// Count 统计数量
func (c *Collection[T]) Count(ctx context.Context, filter string) (int64, error) {
	expr, err := c.ParseFilter(filter)
	if err != nil {
		return 0, err
	}
	return c.repo.Count(ctx, expr)
}

func (c *Collection[T]) checkSort(sort string) error {
	fields, err := ParseSort(sort)
	if err != nil {
		return err
	}
	if len(c.sortable) == 0 {
		return nil
	}
	for _, f := range fields {
		if !slices.Contains(c.sortable, f.Column) {
			return errors.BadRequest("不允许排序字段: " + f.Column)
		}
	}
	return nil
}

// fieldsOf 收集表达式引用的字段名，遇到子查询返回 false
func fieldsOf(expr ssql.Expression) ([]string, bool) {
	switch e := expr.(type) {
	case *ssql.FieldExpression:
		return []string{e.Field}, true
	case *ssql.GroupExpression:
		return fieldsOf(e.Inner)
	case *ssql.LogicExpression:
		var fields []string
		for _, sub := range e.Expressions {
			if sub == nil {
				continue
			}
			f, ok := fieldsOf(sub)
			if !ok {
				return nil, false
			}
			fields = append(fields, f...)
		}
		return fields, true
	}
	return nil, false
}
