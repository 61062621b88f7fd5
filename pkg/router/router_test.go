package router

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct{}

func (fakeController) Prefix() string { return "/items" }

func (fakeController) Routes(middlewares map[string]fiber.Handler) []Route {
	ok := func(body string) fiber.Handler {
		return func(c *fiber.Ctx) error { return c.SendString(body) }
	}
	return []Route{
		{Method: "GET", Path: "", Handler: ok("list")},
		{Method: "GET", Path: ":id", Handler: ok("one"), Middlewares: Use(middlewares, "tag", "missing")},
		{Method: "GET", Path: "/health", Handler: ok("up")},
	}
}

func TestRegister(t *testing.T) {
	app := fiber.New()
	mws := map[string]fiber.Handler{
		"tag": func(c *fiber.Ctx) error {
			c.Set("X-Tag", "1")
			return c.Next()
		},
	}
	Register(app, mws, fakeController{})

	tests := []struct {
		path, tag string
	}{
		{"/items", ""},
		{"/items/3", "1"},
		{"/health", ""},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode, tt.path)
		assert.Equal(t, tt.tag, resp.Header.Get("X-Tag"), tt.path)
	}
}

func TestUse(t *testing.T) {
	h := func(c *fiber.Ctx) error { return nil }
	got := Use(map[string]fiber.Handler{"a": h, "nil": nil}, "a", "nil", "b")
	assert.Len(t, got, 1)
}
