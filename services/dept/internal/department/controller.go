package department

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/dal"
	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/response"
	"github.com/orgadmin/pkg/router"
	"github.com/orgadmin/pkg/validate"
)

// searchKeys 列表查询中参与条件构建的参数
var searchKeys = []string{KeyCode, KeyName, KeyID, KeyParent, KeyAvailable, KeyOrganization}

// Controller 部门控制器
type Controller struct {
	svc *Service
}

// NewController 创建部门控制器
func NewController(svc *Service) *Controller {
	return &Controller{svc: svc}
}

// Prefix 返回路由前缀
func (c *Controller) Prefix() string {
	return "/departments"
}

// Routes 返回路由配置，固定路径需在 :id 之前注册
func (c *Controller) Routes(middlewares map[string]fiber.Handler) []router.Route {
	mws := router.Use(middlewares, "jwt", "casbin")
	return []router.Route{
		{Method: "POST", Path: "", Handler: c.create, Middlewares: mws},
		{Method: "POST", Path: "search", Handler: c.search, Middlewares: mws},
		{Method: "GET", Path: "", Handler: c.list, Middlewares: mws},
		{Method: "GET", Path: "all", Handler: c.all, Middlewares: mws},
		{Method: "GET", Path: "available", Handler: c.available, Middlewares: mws},
		{Method: "GET", Path: "check-code", Handler: c.checkCode, Middlewares: mws},
		{Method: "GET", Path: "relational", Handler: c.relational, Middlewares: mws},
		{Method: "GET", Path: "export", Handler: c.export, Middlewares: mws},
		{Method: "GET", Path: ":id/children", Handler: c.children, Middlewares: mws},
		{Method: "GET", Path: ":id", Handler: c.get, Middlewares: mws},
		{Method: "PUT", Path: ":id", Handler: c.update, Middlewares: mws},
		{Method: "DELETE", Path: ":ids", Handler: c.delete, Middlewares: mws},
	}
}

// create 创建部门
func (c *Controller) create(ctx *fiber.Ctx) error {
	var req CreateRequest
	if err := validate.BindBody(ctx, &req); err != nil {
		return err
	}

	dept, err := c.svc.Create(ctx.UserContext(), req.Model())
	if err != nil {
		return err
	}
	return response.Success(ctx, dept)
}

// update 更新部门
func (c *Controller) update(ctx *fiber.Ctx) error {
	id, err := dal.GetIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req UpdateRequest
	if err := validate.BindBody(ctx, &req); err != nil {
		return err
	}

	dept := req.Model()
	dept.ID = id
	updated, err := c.svc.Update(ctx.UserContext(), dept)
	if err != nil {
		return err
	}
	return response.Success(ctx, updated)
}

// delete 批量删除部门
func (c *Controller) delete(ctx *fiber.Ctx) error {
	ids, err := dal.GetIDsParam(ctx, "ids")
	if err != nil {
		return err
	}

	deleted, err := c.svc.Delete(ctx.UserContext(), ids...)
	if err != nil {
		return err
	}
	if deleted == 0 {
		hasChildren, err := c.svc.HasChildren(ctx.UserContext(), ids...)
		if err != nil {
			return err
		}
		if hasChildren {
			return errors.Conflict("所选部门存在下级部门，无法删除")
		}
		return errors.NotFound("部门")
	}
	return response.Success(ctx, DeleteResponse{Deleted: deleted})
}

// get 部门详情
func (c *Controller) get(ctx *fiber.Ctx) error {
	id, err := dal.GetIDParam(ctx, "id")
	if err != nil {
		return err
	}

	dept, err := c.svc.FindByID(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	if dept == nil {
		return errors.NotFound("部门")
	}
	return response.Success(ctx, dept)
}

// list 分页列表，code/name/id/parent/available/organization 参与条件构建
func (c *Controller) list(ctx *fiber.Ctx) error {
	params, err := dal.BindQuery(ctx)
	if err != nil {
		return err
	}

	result, err := c.svc.Search(ctx.UserContext(), params, queryContent(ctx))
	if err != nil {
		return err
	}
	return response.SuccessPage(ctx, result.Items, result.Total, result.Page, result.PageSize)
}

// search 请求体携带查询内容的分页列表
func (c *Controller) search(ctx *fiber.Ctx) error {
	var req SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.BadRequest("请求体格式错误")
	}

	result, err := c.svc.Search(ctx.UserContext(), req.ListParams(), req.Condition)
	if err != nil {
		return err
	}
	return response.SuccessPage(ctx, result.Items, result.Total, result.Page, result.PageSize)
}

func (c *Controller) all(ctx *fiber.Ctx) error {
	list, err := c.svc.FindAll(ctx.UserContext())
	if err != nil {
		return err
	}
	return response.Success(ctx, list)
}

func (c *Controller) available(ctx *fiber.Ctx) error {
	list, err := c.svc.FindAllAvailable(ctx.UserContext())
	if err != nil {
		return err
	}
	return response.Success(ctx, list)
}

// checkCode 编码唯一性检查
func (c *Controller) checkCode(ctx *fiber.Ctx) error {
	var req CheckCodeRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.BadRequest("查询参数错误")
	}
	if err := validate.Struct(&req); err != nil {
		return err
	}

	unique, err := c.svc.CheckCodeUnique(ctx.UserContext(), req.Code, req.ID)
	if err != nil {
		return err
	}
	return response.Success(ctx, CheckCodeResponse{Unique: unique})
}

// children 子树ID
func (c *Controller) children(ctx *fiber.Ctx) error {
	id, err := dal.GetIDParam(ctx, "id")
	if err != nil {
		return err
	}

	ids, err := c.svc.FindChildrenIDs(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(ctx, ids)
}

// relational 按上级查询，附带下级数量
func (c *Controller) relational(ctx *fiber.Ctx) error {
	content := map[string]any{}
	if v := ctx.Query(KeyParentID); v != "" {
		content[KeyParentID] = v
	}

	list, err := c.svc.Relational(ctx.UserContext(), content)
	if err != nil {
		return err
	}
	return response.Success(ctx, list)
}

// export 导出 xlsx
func (c *Controller) export(ctx *fiber.Ctx) error {
	params, err := dal.BindQuery(ctx)
	if err != nil {
		return err
	}

	list, err := c.svc.FindForExport(ctx.UserContext(), params, queryContent(ctx))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, list); err != nil {
		return errors.Internal(err)
	}

	filename := fmt.Sprintf("departments-%s.xlsx", time.Now().Format("20060102150405"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(buf.Bytes())
}

// queryContent 提取查询条件参数
func queryContent(ctx *fiber.Ctx) map[string]any {
	queries := ctx.Queries()
	content := make(map[string]any, len(searchKeys))
	for _, key := range searchKeys {
		if v, ok := queries[key]; ok {
			content[key] = v
		}
	}
	return content
}
