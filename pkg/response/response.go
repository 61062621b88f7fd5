package response

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/errors"
)

// 业务码，0 为成功，错误时与 HTTP 状态码一致
const (
	CodeSuccess     = 0
	CodeServerError = http.StatusInternalServerError
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Page 分页响应，列表放在 data 中
type Page struct {
	Response
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Response{Code: CodeSuccess, Message: "success", Data: data})
}

func SuccessPage(c *fiber.Ctx, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(Page{
		Response: Response{Code: CodeSuccess, Message: "success", Data: items},
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Error 以业务码作为 HTTP 状态码输出错误，非 4xx/5xx 的业务码按 400 处理
func Error(c *fiber.Ctx, code int, message string) error {
	status := code
	if status < http.StatusBadRequest || status >= 600 {
		status = http.StatusBadRequest
	}
	return c.Status(status).JSON(Response{Code: code, Message: message})
}

// FromError 根据错误类型输出响应，非 AppError 视为内部错误且不暴露细节
func FromError(c *fiber.Ctx, err error) error {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return Error(c, appErr.Code, appErr.Message)
	}
	return Error(c, CodeServerError, "服务器内部错误")
}
