package organization

// CreateRequest 创建机构请求
type CreateRequest struct {
	Code        string `json:"code" validate:"required,max=50,code"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}
