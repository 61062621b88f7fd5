package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgadmin/pkg/auth"
	"github.com/orgadmin/pkg/cache"
	"github.com/orgadmin/pkg/database"
	"github.com/orgadmin/pkg/logger"
	"github.com/orgadmin/services/dept/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	var client *redis.Client
	if cfg.Cache.Driver == "redis" {
		if err := database.InitRedis(&cfg.Redis); err != nil {
			return fmt.Errorf("初始化Redis失败: %w", err)
		}
		defer database.CloseRedis()
		client = database.GetRedis()
	}
	store, err := cache.New(&cfg.Cache, client)
	if err != nil {
		return err
	}
	if closer, ok := store.(*cache.MemoryStore); ok {
		defer closer.Close()
	}

	deps := &server.Deps{
		DB:    database.Get(),
		Cache: store,
		JWT:   auth.NewJWTManager(&cfg.JWT),
	}
	if cfg.Casbin.Enabled {
		if deps.Enforcer, err = auth.NewEnforcer(database.Get(), &cfg.Casbin); err != nil {
			return fmt.Errorf("初始化Casbin失败: %w", err)
		}
	}
	if cfg.Metrics.Enabled {
		deps.Registry = prometheus.NewRegistry()
		deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	app, err := server.New(cfg, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动", zap.String("name", cfg.App.Name), zap.String("addr", cfg.Server.HTTP.Addr()))
		errCh <- app.Listen(cfg.Server.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("收到退出信号，正在关闭服务", zap.String("signal", sig.String()))
	}

	timeout := time.Duration(cfg.Server.HTTP.ShutdownTimeout) * time.Second
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	logger.Info("服务已停止")
	return nil
}
