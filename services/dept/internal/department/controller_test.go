package department

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/middleware"
	"github.com/orgadmin/pkg/router"
	"github.com/orgadmin/services/dept/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
}

func newTestApp(t *testing.T) (*fiber.App, *fixture) {
	t.Helper()
	f := newFixture(t)
	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	router.Register(app.Group("/api"), map[string]fiber.Handler{}, NewController(f.svc))
	return app, f
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestControllerCRUD(t *testing.T) {
	app, _ := newTestApp(t)

	status, resp := call(t, app, "POST", "/api/departments", map[string]any{"code": "HQ", "name": "总部", "sort": 1})
	require.Equal(t, 200, status, resp.Message)
	var hq model.Department
	require.NoError(t, json.Unmarshal(resp.Data, &hq))
	assert.True(t, hq.Available, "available defaults to true")

	status, resp = call(t, app, "POST", "/api/departments", map[string]any{"code": "RD", "name": "研发部", "parentId": hq.ID})
	require.Equal(t, 200, status, resp.Message)
	var rd model.Department
	require.NoError(t, json.Unmarshal(resp.Data, &rd))

	status, _ = call(t, app, "POST", "/api/departments", map[string]any{"code": "bad code", "name": "x"})
	assert.Equal(t, 422, status)

	status, _ = call(t, app, "POST", "/api/departments", map[string]any{"code": "HQ", "name": "重复"})
	assert.Equal(t, 409, status)

	status, resp = call(t, app, "GET", fmt.Sprintf("/api/departments/%d", rd.ID), nil)
	require.Equal(t, 200, status)
	var got model.Department
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.NotNil(t, got.Parent)
	assert.Equal(t, "HQ", got.Parent.Code)

	status, _ = call(t, app, "GET", "/api/departments/999", nil)
	assert.Equal(t, 404, status)

	status, _ = call(t, app, "GET", "/api/departments/abc", nil)
	assert.Equal(t, 400, status)

	status, resp = call(t, app, "PUT", fmt.Sprintf("/api/departments/%d", rd.ID),
		map[string]any{"code": "RD", "name": "研发中心", "parentId": hq.ID, "available": false})
	require.Equal(t, 200, status, resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "研发中心", got.Name)
	assert.False(t, got.Available)

	status, _ = call(t, app, "PUT", "/api/departments/999", map[string]any{"code": "NONE", "name": "无"})
	assert.Equal(t, 404, status)

	status, resp = call(t, app, "DELETE", fmt.Sprintf("/api/departments/%d", hq.ID), nil)
	assert.Equal(t, 409, status)
	assert.Contains(t, resp.Message, "下级部门")

	status, resp = call(t, app, "DELETE", fmt.Sprintf("/api/departments/%d,%d", rd.ID, rd.ID), nil)
	require.Equal(t, 200, status)
	var deleted DeleteResponse
	require.NoError(t, json.Unmarshal(resp.Data, &deleted))
	assert.Equal(t, int64(1), deleted.Deleted)

	status, resp = call(t, app, "DELETE", "/api/departments/999", nil)
	assert.Equal(t, 404, status)
	assert.NotContains(t, resp.Message, "下级部门")

	status, _ = call(t, app, "DELETE", fmt.Sprintf("/api/departments/%d", rd.ID), nil)
	assert.Equal(t, 404, status, "already deleted")
}

func TestControllerQueries(t *testing.T) {
	app, f := newTestApp(t)
	depts := f.tree(t)

	status, resp := call(t, app, "GET", "/api/departments?parent=%E6%80%BB%E9%83%A8&pageSize=1", nil)
	require.Equal(t, 200, status, resp.Message)
	assert.Equal(t, int64(2), resp.Total)
	var items []model.Department
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "MK", items[0].Code)

	status, resp = call(t, app, "GET", "/api/departments?filter="+strings.ReplaceAll("available = false", " ", "%20"), nil)
	require.Equal(t, 200, status, resp.Message)
	assert.Equal(t, int64(1), resp.Total)

	status, _ = call(t, app, "GET", "/api/departments?id=abc", nil)
	assert.Equal(t, 422, status)

	status, resp = call(t, app, "POST", "/api/departments/search", map[string]any{
		"pageSize":  10,
		"sort":      "-code",
		"condition": map[string]any{"name": "部", "available": true},
	})
	require.Equal(t, 200, status, resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	codes := make([]string, 0, len(items))
	for _, d := range items {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"RD", "MK", "HQ", "FN"}, codes)

	status, resp = call(t, app, "GET", "/api/departments/all", nil)
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 5)

	status, resp = call(t, app, "GET", "/api/departments/available", nil)
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 4)

	var check CheckCodeResponse
	status, resp = call(t, app, "GET", "/api/departments/check-code?code=RD", nil)
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(resp.Data, &check))
	assert.False(t, check.Unique)

	status, resp = call(t, app, "GET", fmt.Sprintf("/api/departments/check-code?code=RD&id=%d", depts["RD"].ID), nil)
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(resp.Data, &check))
	assert.True(t, check.Unique)

	status, _ = call(t, app, "GET", "/api/departments/check-code", nil)
	assert.Equal(t, 422, status)

	var ids []int64
	status, resp = call(t, app, "GET", fmt.Sprintf("/api/departments/%d/children", depts["RD"].ID), nil)
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(resp.Data, &ids))
	assert.Equal(t, []int64{depts["RD"].ID, depts["RD-BE"].ID}, ids)

	status, resp = call(t, app, "GET", fmt.Sprintf("/api/departments/relational?parentId=%d", depts["HQ"].ID), nil)
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[1].CountOfChildren)
}

func TestControllerExport(t *testing.T) {
	app, f := newTestApp(t)
	f.tree(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/departments/export?code=RD", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "departments-")

	book, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "编码", rows[0][1])
	assert.Equal(t, "RD-BE", rows[1][1])
	assert.Equal(t, "停用", rows[1][4])
	assert.Equal(t, "研发部", rows[1][5])
	assert.Equal(t, "RD", rows[2][1])
	assert.Equal(t, "总部", rows[2][5])
}
