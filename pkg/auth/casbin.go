package auth

import (
	"fmt"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/orgadmin/pkg/config"
	"gorm.io/gorm"
)

// SuperAdminRole 超级管理员角色，不经策略检查
const SuperAdminRole = "super_admin"

// defaultModel 未配置 modelPath 时使用的 RBAC 模型
// obj 为请求路径(keyMatch2 支持 :id 与 *)，act 为 HTTP 方法
const defaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Enforcer 角色-路径-方法 权限检查
type Enforcer struct {
	enforcer *casbin.Enforcer
}

// NewEnforcer 使用 gorm 适配器创建 Enforcer，策略存储在 casbin_rule 表
func NewEnforcer(db *gorm.DB, cfg *config.CasbinConfig) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	var m model.Model
	if cfg.ModelPath != "" {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(defaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load casbin policy: %w", err)
	}

	return &Enforcer{enforcer: e}, nil
}

// RoleSubject 角色主体名
func RoleSubject(roleCode string) string {
	return "role:" + roleCode
}

// CheckRolePermission 检查角色对路径与方法的权限
func (e *Enforcer) CheckRolePermission(roleCode, path, method string) (bool, error) {
	if roleCode == SuperAdminRole {
		return true, nil
	}
	return e.enforcer.Enforce(RoleSubject(roleCode), path, method)
}

// Permission 权限定义
type Permission struct {
	Resource string `json:"resource"` // 资源路径,如 /api/departments/:id
	Action   string `json:"action"`   // 动作,如 GET, POST, PUT, DELETE, *
}

// SetRolePermissions 覆盖角色权限
func (e *Enforcer) SetRolePermissions(roleCode string, permissions []Permission) error {
	role := RoleSubject(roleCode)

	if _, err := e.enforcer.DeletePermissionsForUser(role); err != nil {
		return err
	}

	rules := make([][]string, 0, len(permissions))
	for _, perm := range permissions {
		rules = append(rules, []string{role, perm.Resource, perm.Action})
	}
	if len(rules) == 0 {
		return nil
	}
	_, err := e.enforcer.AddPolicies(rules)
	return err
}

// GetRolePermissions 获取角色权限
func (e *Enforcer) GetRolePermissions(roleCode string) ([]Permission, error) {
	policies, err := e.enforcer.GetFilteredPolicy(0, RoleSubject(roleCode))
	if err != nil {
		return nil, err
	}
	perms := make([]Permission, 0, len(policies))
	for _, p := range policies {
		if len(p) >= 3 {
			perms = append(perms, Permission{Resource: p[1], Action: p[2]})
		}
	}
	return perms, nil
}
