package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponses(t *testing.T) {
	app := fiber.New()
	app.Get("/page", func(c *fiber.Ctx) error { return SuccessPage(c, []int{1, 2}, 7, 2, 2) })
	app.Get("/conflict", func(c *fiber.Ctx) error { return FromError(c, errors.Conflict("编码已存在")) })
	app.Get("/plain", func(c *fiber.Ctx) error { return FromError(c, io.EOF) })
	app.Get("/business", func(c *fiber.Ctx) error { return Error(c, 1, "失败") })

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/page", 200, `{"code":0,"message":"success","data":[1,2],"total":7,"page":2,"pageSize":2}`},
		{"/conflict", 409, `{"code":409,"message":"编码已存在"}`},
		{"/plain", 500, `{"code":500,"message":"服务器内部错误"}`},
		{"/business", 400, `{"code":1,"message":"失败"}`},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, tt.body, string(body), tt.path)
	}
}

func TestSuccessOmitsNilData(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return Success(c, nil) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.NotContains(t, m, "data")
}
