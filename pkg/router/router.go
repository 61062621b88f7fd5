package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Route 一条路由，Path 相对于控制器前缀，以 / 开头且不在前缀下的按绝对路径注册
type Route struct {
	Method      string
	Path        string
	Handler     fiber.Handler
	Middlewares []fiber.Handler
}

// Registrar 控制器按前缀提供自己的路由，中间件按名称从 Use 取
type Registrar interface {
	Prefix() string
	Routes(middlewares map[string]fiber.Handler) []Route
}

// Use 按名称取出中间件，未注册的名称被忽略
func Use(middlewares map[string]fiber.Handler, names ...string) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(names))
	for _, name := range names {
		if h := middlewares[name]; h != nil {
			handlers = append(handlers, h)
		}
	}
	return handlers
}

// Register 注册控制器的全部路由
func Register(app fiber.Router, middlewares map[string]fiber.Handler, controllers ...Registrar) {
	for _, ctrl := range controllers {
		prefix := ctrl.Prefix()
		group := app.Group(prefix)

		for _, route := range ctrl.Routes(middlewares) {
			chain := append(append(make([]fiber.Handler, 0, len(route.Middlewares)+1), route.Middlewares...), route.Handler)
			if strings.HasPrefix(route.Path, "/") && !strings.HasPrefix(route.Path, prefix) {
				app.Add(route.Method, route.Path, chain...)
				continue
			}
			group.Add(route.Method, route.Path, chain...)
		}
	}
}
