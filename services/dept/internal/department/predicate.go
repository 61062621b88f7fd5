package department

import (
	"strconv"
	"strings"

	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/ssql"
	"github.com/orgadmin/services/dept/internal/model"
	"github.com/spf13/cast"
)

// 查询条件键
const (
	KeyCode         = "code"
	KeyName         = "name"
	KeyID           = "id"
	KeyParent       = "parent"
	KeyAvailable    = "available"
	KeyOrganization = "organization"
	KeyParentID     = "parentId"
)

// present 返回非空白的条件值
func present(content map[string]any, key string) (any, bool) {
	v, ok := content[key]
	if !ok || v == nil {
		return nil, false
	}
	if strings.TrimSpace(cast.ToString(v)) == "" {
		return nil, false
	}
	return v, true
}

// OnSearch 根据查询内容构建条件，各条件以 AND 组合，没有条件时返回 nil
//
// 上级与机构按名称模糊匹配，转换为子查询:
//
//	parent_id IN (SELECT id FROM sys_department WHERE name LIKE ? AND deleted_at IS NULL)
func OnSearch(content map[string]any) (ssql.Expression, error) {
	b := ssql.Where()

	if v, ok := present(content, KeyCode); ok {
		b.Like("code", cast.ToString(v))
	}
	if v, ok := present(content, KeyName); ok {
		b.Like("name", cast.ToString(v))
	}
	if v, ok := present(content, KeyID); ok {
		id, err := toLong(v)
		if err != nil {
			return nil, errors.Validation("id 必须是整数")
		}
		b.Eq("id", id)
	}
	if v, ok := present(content, KeyParent); ok {
		b.InSubquery("parent_id", model.Department{}.TableName(), "id", nameLike(cast.ToString(v)))
	}
	if v, ok := present(content, KeyAvailable); ok {
		available, err := cast.ToBoolE(v)
		if err != nil {
			return nil, errors.Validation("available 必须是布尔值")
		}
		b.Eq("available", available)
	}
	if v, ok := present(content, KeyOrganization); ok {
		b.InSubquery("organization_id", model.Organization{}.TableName(), "id", nameLike(cast.ToString(v)))
	}

	return b.Build(), nil
}

func nameLike(name string) func(*ssql.Builder) {
	return func(sub *ssql.Builder) {
		sub.Like("name", name).IsNull("deleted_at")
	}
}

// toLong 字符串按十进制解析，JSON 数字直接转换
func toLong(v any) (int64, error) {
	if s, ok := v.(string); ok {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	return cast.ToInt64E(v)
}

// OnRelationalSearch 按上级ID构建条件，parentId 缺失、无法解析或为 0 时查询顶级部门
func OnRelationalSearch(content map[string]any) ssql.Expression {
	parentID, _ := toLong(content[KeyParentID])
	if parentID != 0 {
		return ssql.Where().Eq("parent_id", parentID).Build()
	}
	return ssql.Where().IsNull("parent_id").Build()
}
