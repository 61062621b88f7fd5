package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/auth"
	"github.com/orgadmin/pkg/config"
	"github.com/orgadmin/pkg/database"
	"github.com/orgadmin/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decode(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.NewDecoder(body).Decode(&e))
	return e
}

func TestJWTAuth(t *testing.T) {
	m := auth.NewJWTManager(&config.JWTConfig{Secret: "s", Expire: 60})
	app := fiber.New()
	app.Get("/me", JWTAuth(m), func(c *fiber.Ctx) error {
		return c.SendString(GetUsername(c) + "/" + GetRoleCode(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	token, err := m.GenerateToken(1, "alice", "viewer")
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "alice/viewer", string(body))
}

func TestCasbinAuth(t *testing.T) {
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", LogLevel: "silent"})
	require.NoError(t, err)
	e, err := auth.NewEnforcer(db, &config.CasbinConfig{Enabled: true})
	require.NoError(t, err)
	require.NoError(t, e.SetRolePermissions("viewer", []auth.Permission{{Resource: "/api/departments/:id", Action: "GET"}}))

	app := fiber.New()
	setRole := func(role string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("roleCode", role)
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(200) }
	app.Get("/api/departments/:id", setRole("viewer"), CasbinAuth(e), ok)
	app.Delete("/api/departments/:id", setRole("viewer"), CasbinAuth(e), ok)
	app.Get("/anon", CasbinAuth(e), ok)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/api/departments/5", 200},
		{"DELETE", "/api/departments/5", 403},
		{"GET", "/anon", 401},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, tt.method+" "+tt.path)
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(), Recovery(), ErrorHandler())
	app.Get("/missing", func(c *fiber.Ctx) error { return errors.NotFound("部门") })
	app.Get("/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })
	app.Get("/panic", func(c *fiber.Ctx) error { panic("bad") })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "部门不存在", decode(t, resp.Body).Message)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.NotContains(t, decode(t, resp.Body).Message, "EOF")

	resp, err = app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRequestIDPassThrough(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetRequestID(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "abc-123", string(body))
}

func TestCors(t *testing.T) {
	app := fiber.New()
	app.Use(Cors())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, "http://example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "/metrics")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/departments/:id", func(c *fiber.Ctx) error { return c.SendStatus(200) })
	app.Get("/bad", func(c *fiber.Ctx) error { return fiber.NewError(400, "bad") })
	app.Get("/metrics", MetricsEndpoint(reg))

	for _, path := range []string{"/departments/1", "/departments/2", "/bad", "/metrics"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/departments/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/bad", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))

	_, err = NewMetrics(reg, "")
	assert.Error(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "http_requests_total"))
}
