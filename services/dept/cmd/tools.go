package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/orgadmin/pkg/auth"
	"github.com/orgadmin/pkg/cache"
	"github.com/orgadmin/pkg/dal"
	"github.com/orgadmin/pkg/database"
	"github.com/orgadmin/pkg/logger"
	"github.com/orgadmin/services/dept/internal/department"
	"github.com/orgadmin/services/dept/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOut    string
	exportFilter string
	exportSort   string

	tokenUserID   int64
	tokenUsername string
	tokenRole     string

	grantRole  string
	grantPerms []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出部门列表为 xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer database.Close()

		store := cache.NewMemoryStore("", 0)
		defer store.Close()
		svc := server.NewDepartmentService(cfg, database.Get(), store)

		list, err := svc.FindForExport(context.Background(), &dal.ListParams{Filter: exportFilter, Sort: exportSort}, nil)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := department.WriteXLSX(f, list); err != nil {
			return err
		}
		logger.Info("导出完成", zap.String("file", exportOut), zap.Int("rows", len(list)))
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "签发访问令牌，用于联调",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close()

		token, err := auth.NewJWTManager(&cfg.JWT).GenerateToken(tokenUserID, tokenUsername, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "设置角色的接口权限，格式 METHOD:PATH",
	Example: `  deptsvc grant --role dept_viewer --perm GET:/api/departments --perm "GET:/api/departments/*"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		perms, err := parsePermissions(grantPerms)
		if err != nil {
			return err
		}

		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer database.Close()

		enforcer, err := auth.NewEnforcer(database.Get(), &cfg.Casbin)
		if err != nil {
			return err
		}
		if err := enforcer.SetRolePermissions(grantRole, perms); err != nil {
			return err
		}
		logger.Info("角色权限已更新", zap.String("role", grantRole), zap.Int("count", len(perms)))
		return nil
	},
}

// parsePermissions 解析 METHOD:PATH 形式的权限
func parsePermissions(items []string) ([]auth.Permission, error) {
	perms := make([]auth.Permission, 0, len(items))
	for _, item := range items {
		method, path, ok := strings.Cut(item, ":")
		if !ok || method == "" || !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("invalid permission %q, want METHOD:/path", item)
		}
		perms = append(perms, auth.Permission{Resource: path, Action: strings.ToUpper(method)})
	}
	return perms, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "departments.xlsx", "输出文件")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "过滤条件，例如 available = true")
	exportCmd.Flags().StringVar(&exportSort, "sort", "", "排序，例如 -sort,id")

	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 1, "用户ID")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "admin", "用户名")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "super_admin", "角色编码")

	grantCmd.Flags().StringVar(&grantRole, "role", "", "角色编码")
	grantCmd.Flags().StringArrayVar(&grantPerms, "perm", nil, "权限，可重复")
	_ = grantCmd.MarkFlagRequired("role")
}
