package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	apperrors "github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/logger"
	"github.com/orgadmin/pkg/response"
	"go.uber.org/zap"
)

// Recovery 恢复中间件
func Recovery() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
					zap.String("requestId", GetRequestID(c)),
				)
				err = response.Error(c, 500, "服务器内部错误")
			}
		}()
		return c.Next()
	}
}

// Cors 跨域中间件
func Cors() fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")

		if origin != "" {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			c.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Request-ID")
			c.Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, X-Request-ID")
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

// RequestID 请求ID中间件，沿用客户端传入的 X-Request-ID
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("requestId", requestID)
		c.Set(fiber.HeaderXRequestID, requestID)
		return c.Next()
	}
}

// GetRequestID 从上下文获取请求ID
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestId").(string)
	return id
}

// ErrorHandler 统一错误处理中间件，将处理器返回的错误写为 JSON 响应
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return response.Error(c, fe.Code, fe.Message)
		}

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code >= 500 {
			logger.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("requestId", GetRequestID(c)),
			)
		}
		return response.FromError(c, err)
	}
}

// AccessLog 访问日志中间件
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("requestId", GetRequestID(c)),
		}
		if userID := GetUserID(c); userID != 0 {
			fields = append(fields, zap.Int64("userId", userID))
		}
		logger.Info("http request", fields...)

		return err
	}
}
