package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/auth"
	"github.com/orgadmin/pkg/cache"
	"github.com/orgadmin/pkg/config"
	"github.com/orgadmin/pkg/logger"
	"github.com/orgadmin/pkg/middleware"
	"github.com/orgadmin/pkg/response"
	"github.com/orgadmin/pkg/router"
	"github.com/orgadmin/services/dept/internal/department"
	"github.com/orgadmin/services/dept/internal/organization"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Deps 服务依赖
type Deps struct {
	DB       *gorm.DB
	Cache    cache.Store
	JWT      *auth.JWTManager
	Enforcer *auth.Enforcer       // 为空时不做接口权限校验
	Registry *prometheus.Registry // 为空时不采集指标
}

// NewDepartmentService 组装部门业务
func NewDepartmentService(cfg *config.Config, db *gorm.DB, store cache.Store) *department.Service {
	return department.NewService(
		department.NewRepository(db),
		organization.NewRepository(db),
		store,
		time.Duration(cfg.Cache.TTL)*time.Second,
		logger.Named("department"),
	)
}

// New 创建 HTTP 应用并注册全部路由
func New(cfg *config.Config, deps *Deps) (*fiber.App, error) {
	httpCfg := cfg.Server.HTTP
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(httpCfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(httpCfg.WriteTimeout) * time.Second,
	})

	app.Use(middleware.RequestID(), middleware.Recovery(), middleware.AccessLog())
	if deps.Registry != nil && cfg.Metrics.Enabled {
		metrics, err := middleware.NewMetrics(deps.Registry, cfg.Metrics.Path)
		if err != nil {
			return nil, err
		}
		app.Use(metrics.Handler())
		app.Get(cfg.Metrics.Path, middleware.MetricsEndpoint(deps.Registry))
	}
	app.Use(middleware.Cors(), middleware.ErrorHandler())

	app.Get("/health", health(cfg, deps.DB))

	middlewares := map[string]fiber.Handler{
		"jwt": middleware.JWTAuth(deps.JWT),
	}
	if deps.Enforcer != nil {
		middlewares["casbin"] = middleware.CasbinAuth(deps.Enforcer)
	}

	router.Register(app.Group(httpCfg.Prefix), middlewares,
		department.NewController(NewDepartmentService(cfg, deps.DB, deps.Cache)),
		organization.NewController(organization.NewRepository(deps.DB), logger.Named("organization")),
	)
	return app, nil
}

// health 健康检查，数据库不可用时返回 503
func health(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		bodyCode := response.CodeSuccess

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status = "unhealthy"
			code = fiber.StatusServiceUnavailable
			bodyCode = response.CodeServerError
		}

		return c.Status(code).JSON(response.Response{
			Code:    bodyCode,
			Message: status,
			Data: fiber.Map{
				"service": cfg.App.Name,
				"version": cfg.App.Version,
				"time":    time.Now().Format(time.RFC3339),
			},
		})
	}
}
