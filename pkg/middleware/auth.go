package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/auth"
	"github.com/orgadmin/pkg/logger"
	"github.com/orgadmin/pkg/response"
	"go.uber.org/zap"
)

// JWTAuth JWT认证中间件
func JWTAuth(jwtManager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return response.Error(c, 401, "未提供认证令牌")
		}

		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := jwtManager.ParseToken(token)
		if err != nil {
			return response.Error(c, 401, "无效的认证令牌")
		}

		c.Locals("userId", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("roleCode", claims.RoleCode)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// CasbinAuth 按 (角色, 路径, 方法) 检查权限，需在 JWTAuth 之后使用
func CasbinAuth(enforcer *auth.Enforcer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleCode := GetRoleCode(c)
		if roleCode == "" {
			return response.Error(c, 401, "未获取到用户信息")
		}

		ok, err := enforcer.CheckRolePermission(roleCode, c.Path(), c.Method())
		if err != nil {
			logger.Error("权限检查失败", zap.Error(err), zap.String("roleCode", roleCode))
			return response.Error(c, 500, "权限检查失败")
		}
		if !ok {
			return response.Error(c, 403, "没有访问权限")
		}
		return c.Next()
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals("userId").(int64)
	return userID
}

// GetUsername 从上下文获取用户名
func GetUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}

// GetRoleCode 从上下文获取角色编码
func GetRoleCode(c *fiber.Ctx) string {
	roleCode, _ := c.Locals("roleCode").(string)
	return roleCode
}
