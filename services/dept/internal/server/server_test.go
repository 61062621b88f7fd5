package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/orgadmin/pkg/auth"
	"github.com/orgadmin/pkg/cache"
	"github.com/orgadmin/pkg/config"
	"github.com/orgadmin/pkg/database"
	"github.com/orgadmin/pkg/response"
	"github.com/orgadmin/services/dept/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "dept-service"
	cfg.Server.HTTP.Prefix = "/api"
	cfg.Cache.TTL = 60
	cfg.JWT = config.JWTConfig{Secret: "test", Expire: 60}
	cfg.Metrics = config.MetricsConfig{Enabled: true, Path: "/metrics"}
	return cfg
}

func TestServer(t *testing.T) {
	cfg := testConfig()
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	enforcer, err := auth.NewEnforcer(db, &config.CasbinConfig{Enabled: true})
	require.NoError(t, err)
	require.NoError(t, enforcer.SetRolePermissions("viewer", []auth.Permission{{Resource: "/api/departments", Action: "GET"}}))

	store := cache.NewMemoryStore("", 0)
	defer store.Close()
	jwtManager := auth.NewJWTManager(&cfg.JWT)

	app, err := New(cfg, &Deps{DB: db, Cache: store, JWT: jwtManager, Enforcer: enforcer, Registry: prometheus.NewRegistry()})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/departments", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	viewer, err := jwtManager.GenerateToken(1, "alice", "viewer")
	require.NoError(t, err)
	admin, err := jwtManager.GenerateToken(2, "root", auth.SuperAdminRole)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/departments", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/departments", bytes.NewBufferString(`{"code":"HQ","name":"总部"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+viewer)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/departments", bytes.NewBufferString(`{"code":"HQ","name":"总部"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `path="/api/departments"`)
}

func TestHealthUnavailable(t *testing.T) {
	cfg := testConfig()
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	store := cache.NewMemoryStore("", 0)
	defer store.Close()

	app, err := New(cfg, &Deps{DB: db, Cache: store, JWT: auth.NewJWTManager(&cfg.JWT)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	var body response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, response.CodeServerError, body.Code)
	assert.Equal(t, "unhealthy", body.Message)
}
