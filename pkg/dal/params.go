package dal

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/utils"
)

// ParseID 解析单个 ID
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.BadRequest("ID不能为空")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("无效的ID: " + s)
	}
	return id, nil
}

// ParseIDs 解析逗号分隔的 ID 列表，忽略空项与重复项
func ParseIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		id, err := ParseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.BadRequest("没有有效的ID")
	}
	return utils.Unique(ids), nil
}

// GetIDParam 从路由参数获取 ID
func GetIDParam(ctx *fiber.Ctx, paramName string) (int64, error) {
	return ParseID(ctx.Params(paramName))
}

// GetIDsParam 从路由参数获取 ID 列表
func GetIDsParam(ctx *fiber.Ctx, paramName string) ([]int64, error) {
	return ParseIDs(ctx.Params(paramName))
}
