package department

import (
	"github.com/orgadmin/pkg/dal"
	"github.com/orgadmin/services/dept/internal/model"
)

// CreateRequest 创建部门请求
type CreateRequest struct {
	Code           string `json:"code" validate:"required,max=50,code"`
	Name           string `json:"name" validate:"required,max=50"`
	Sort           int    `json:"sort" validate:"min=0"`
	Available      *bool  `json:"available"` // 缺省为可用
	ParentID       *int64 `json:"parentId" validate:"omitempty,gt=0"`
	OrganizationID *int64 `json:"organizationId" validate:"omitempty,gt=0"`
	Description    string `json:"description" validate:"max=255"`
}

// UpdateRequest 更新部门请求，所有属性整体覆盖
type UpdateRequest = CreateRequest

// Model 转换为部门模型
func (r *CreateRequest) Model() *model.Department {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return &model.Department{
		Code:           r.Code,
		Name:           r.Name,
		Sort:           r.Sort,
		Available:      available,
		ParentID:       r.ParentID,
		OrganizationID: r.OrganizationID,
		Description:    r.Description,
	}
}

// SearchRequest 条件分页查询请求
type SearchRequest struct {
	Page      int            `json:"page"`
	PageSize  int            `json:"pageSize"`
	Sort      string         `json:"sort"`
	Filter    string         `json:"filter"`
	Condition map[string]any `json:"condition"`
}

// ListParams 转换为列表参数
func (r *SearchRequest) ListParams() *dal.ListParams {
	return &dal.ListParams{Filter: r.Filter, Sort: r.Sort, Page: r.Page, PageSize: r.PageSize}
}

// CheckCodeRequest 编码唯一性检查请求
type CheckCodeRequest struct {
	Code string `query:"code" json:"code" validate:"required"`
	ID   int64  `query:"id" json:"id"`
}

// CheckCodeResponse 编码唯一性检查结果
type CheckCodeResponse struct {
	Unique bool `json:"unique"`
}

// DeleteResponse 删除结果
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
