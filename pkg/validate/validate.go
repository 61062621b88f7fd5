package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/errors"
)

var (
	once     sync.Once
	instance *validator.Validate

	codePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

// Get 获取全局校验器
func Get() *validator.Validate {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New 创建校验器，字段名取 json 标签
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// 编码只允许字母、数字、下划线与连字符
	if err := v.RegisterValidation("code", func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic("register validation code: " + err.Error())
	}
	return v
}

// Struct 校验结构体，失败时返回 422 AppError
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Validation(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return errors.Validation(strings.Join(msgs, "; "))
}

// BindBody 解析请求体并校验
func BindBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errors.BadRequest("请求体格式错误")
	}
	return Struct(dst)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 不能为空", fe.Field())
	case "max":
		return fmt.Sprintf("%s 长度不能超过 %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s 不能小于 %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s 必须大于 %s", fe.Field(), fe.Param())
	case "code":
		return fmt.Sprintf("%s 只能包含字母、数字、下划线和连字符", fe.Field())
	default:
		return fmt.Sprintf("%s 校验失败(%s)", fe.Field(), fe.Tag())
	}
}
