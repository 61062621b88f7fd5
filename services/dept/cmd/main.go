package main

import (
	"fmt"
	"os"

	"github.com/orgadmin/pkg/config"
	"github.com/orgadmin/pkg/database"
	"github.com/orgadmin/pkg/logger"
	"github.com/orgadmin/services/dept/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "deptsvc",
	Short:         "部门管理服务",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径，默认查找 configs/config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, exportCmd, tokenCmd, grantCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap 加载配置、初始化日志与数据库，并迁移表结构
func bootstrap() (*config.Config, error) {
	if err := config.Init(configPath); err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	if err := database.AutoMigrate(model.All()...); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	logger.Info("数据库迁移完成", zap.String("driver", cfg.Database.Driver))
	return cfg, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "迁移数据库表结构",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := bootstrap(); err != nil {
			return err
		}
		defer logger.Sync()
		return database.Close()
	},
}
