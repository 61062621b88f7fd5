package organization

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/orgadmin/pkg/dal"
	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/response"
	"github.com/orgadmin/pkg/router"
	"github.com/orgadmin/pkg/validate"
	"github.com/orgadmin/services/dept/internal/model"
	"go.uber.org/zap"
)

// Controller 机构控制器
type Controller struct {
	repo       Repository
	collection *dal.Collection[model.Organization]
	log        *zap.Logger
}

// NewController 创建机构控制器
func NewController(repo Repository, log *zap.Logger) *Controller {
	return &Controller{
		repo: repo,
		collection: dal.NewCollection[model.Organization](repo.DB()).
			WithSortable("id", "code", "name", "created_at").
			WithFilterable("id", "code", "name").
			WithDefaultSort("id"),
		log: log,
	}
}

// Prefix 返回路由前缀
func (c *Controller) Prefix() string {
	return "/organizations"
}

// Routes 返回路由配置
func (c *Controller) Routes(middlewares map[string]fiber.Handler) []router.Route {
	mws := router.Use(middlewares, "jwt", "casbin")
	return []router.Route{
		{Method: "POST", Path: "", Handler: c.create, Middlewares: mws},
		{Method: "GET", Path: "", Handler: c.list, Middlewares: mws},
		{Method: "GET", Path: ":id", Handler: c.get, Middlewares: mws},
	}
}

// create 创建机构
func (c *Controller) create(ctx *fiber.Ctx) error {
	var req CreateRequest
	if err := validate.BindBody(ctx, &req); err != nil {
		return err
	}

	org, err := c.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return response.Success(ctx, org)
}

// Create 创建机构业务逻辑，编码重复返回 409
func (c *Controller) Create(ctx context.Context, req *CreateRequest) (*model.Organization, error) {
	exists, err := c.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Duplicate("机构编码")
	}

	org := &model.Organization{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := c.repo.Create(ctx, org); err != nil {
		return nil, err
	}
	c.log.Info("organization created", zap.Int64("id", org.ID), zap.String("code", org.Code))
	return org, nil
}

// list 机构分页列表
func (c *Controller) list(ctx *fiber.Ctx) error {
	params, err := dal.BindQuery(ctx)
	if err != nil {
		return err
	}

	result, err := c.collection.GetList(ctx.UserContext(), params, nil)
	if err != nil {
		return err
	}
	return response.SuccessPage(ctx, result.Items, result.Total, result.Page, result.PageSize)
}

// get 机构详情
func (c *Controller) get(ctx *fiber.Ctx) error {
	id, err := dal.GetIDParam(ctx, "id")
	if err != nil {
		return err
	}

	org, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	if org == nil {
		return errors.NotFound("机构")
	}
	return response.Success(ctx, org)
}
