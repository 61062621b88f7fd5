package dal

import (
	"strings"

	"github.com/orgadmin/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// Pagination 分页参数，Page 从 1 开始
// Sort 形如 "-sort,name"，- 表示降序
type Pagination struct {
	Page     int    `json:"page" query:"page"`
	PageSize int    `json:"pageSize" query:"pageSize"`
	Sort     string `json:"sort" query:"sort"`
}

// NewPagination 创建分页参数
func NewPagination(page, pageSize int) *Pagination {
	p := &Pagination{Page: page, PageSize: pageSize}
	p.Normalize()
	return p
}

// Normalize 规范化页码与每页数量
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset 偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// SortField 排序字段
type SortField struct {
	Column string
	Desc   bool
}

// ParseSort 解析排序串，字段名只允许字母、数字、下划线
func ParseSort(sort string) ([]SortField, error) {
	var fields []SortField
	for _, s := range strings.Split(sort, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		desc := false
		switch s[0] {
		case '-':
			desc = true
			s = s[1:]
		case '+':
			s = s[1:]
		}

		if !isColumnName(s) {
			return nil, errors.BadRequest("非法排序字段: " + s)
		}
		fields = append(fields, SortField{Column: s, Desc: desc})
	}
	return fields, nil
}

// OrderScope 将排序字段转换为 gorm scope，列名由 gorm 按方言引用
func OrderScope(fields []SortField) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, f := range fields {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Column}, Desc: f.Desc})
		}
		return db
	}
}

func isColumnName(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPagedResult 创建分页结果
func NewPagedResult[T any](items []T, total int64, p *Pagination) *PagedResult[T] {
	if items == nil {
		items = make([]T, 0)
	}
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return &PagedResult[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}
