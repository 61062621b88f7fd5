package department

import (
	"context"
	"slices"
	"time"

	"github.com/orgadmin/pkg/cache"
	"github.com/orgadmin/pkg/dal"
	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/ssql"
	"github.com/orgadmin/pkg/utils"
	"github.com/orgadmin/services/dept/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CacheKeyAvailable 可用部门列表缓存键
const CacheKeyAvailable = "departments:available"

// OrganizationFinder 机构查询
type OrganizationFinder interface {
	FindByID(ctx context.Context, id int64, opts ...dal.QueryOption) (*model.Organization, error)
}

// Service 部门业务
type Service struct {
	repo       Repository
	orgs       OrganizationFinder
	cache      cache.Store
	ttl        time.Duration
	collection *dal.Collection[model.Department]
	log        *zap.Logger
}

// NewService 创建部门业务
func NewService(repo Repository, orgs OrganizationFinder, store cache.Store, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		orgs:  orgs,
		cache: store,
		ttl:   ttl,
		collection: dal.NewCollection[model.Department](repo.DB()).
			WithSortable("id", "code", "name", "sort", "available", "parent_id", "organization_id", "created_at", "updated_at").
			WithFilterable("id", "code", "name", "sort", "available", "parent_id", "organization_id", "description").
			WithDefaultSort("sort,id").
			WithOptions(preloads()...),
		log: log,
	}
}

func preloads() []dal.QueryOption {
	return []dal.QueryOption{dal.WithPreload("Parent"), dal.WithPreload("Organization")}
}

func bySortThenID() dal.QueryOption {
	return dal.OrderScope([]dal.SortField{{Column: "sort"}, {Column: "id"}})
}

// Create 创建部门
func (s *Service) Create(ctx context.Context, dept *model.Department) (*model.Department, error) {
	if err := s.checkCode(ctx, dept.Code, 0); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, dept); err != nil {
		return nil, err
	}

	dept.ID = 0
	if err := s.repo.Create(ctx, dept); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("department created",
		zap.Int64("id", dept.ID),
		zap.String("code", dept.Code),
		zap.Int64("parentId", utils.Val(dept.ParentID)))
	return s.FindByID(ctx, dept.ID)
}

// Update 以 dept 的属性整体覆盖已存储的部门
func (s *Service) Update(ctx context.Context, dept *model.Department) (*model.Department, error) {
	stored, err := s.repo.FindByID(ctx, dept.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.NotFound("部门")
	}

	if err := s.checkCode(ctx, dept.Code, dept.ID); err != nil {
		return nil, err
	}
	if dept.ParentID != nil {
		if *dept.ParentID == dept.ID {
			return nil, errors.BadRequest("上级部门不能是自身")
		}
		subtree, err := s.repo.FindChildrenIDs(ctx, dept.ID)
		if err != nil {
			return nil, err
		}
		if slices.Contains(subtree, *dept.ParentID) {
			return nil, errors.BadRequest("上级部门不能是自身的下级部门")
		}
	}
	if err := s.checkRefs(ctx, dept); err != nil {
		return nil, err
	}

	stored.CopyFrom(dept)
	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("department updated",
		zap.Int64("id", stored.ID),
		zap.String("code", stored.Code),
		zap.Int64("parentId", utils.Val(stored.ParentID)))
	return s.FindByID(ctx, stored.ID)
}

// Delete 删除部门，任一部门存在下级时不删除并返回 0
func (s *Service) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		hasChildren, err := repo.HasChildrenIn(ctx, ids)
		if err != nil {
			return err
		}
		if hasChildren {
			return nil
		}
		deleted, err = repo.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.invalidate(ctx)
	}
	s.log.Info("department delete", zap.Int64s("ids", ids), zap.Int64("deleted", deleted))
	return deleted, nil
}

// HasChildren 任一部门存在未删除的下级时返回 true
func (s *Service) HasChildren(ctx context.Context, ids ...int64) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	return s.repo.HasChildrenIn(ctx, ids)
}

// FindByID 查询部门，不存在返回 nil
func (s *Service) FindByID(ctx context.Context, id int64) (*model.Department, error) {
	return s.repo.FindByID(ctx, id, preloads()...)
}

// FindAll 全部部门
func (s *Service) FindAll(ctx context.Context) ([]model.Department, error) {
	return s.repo.FindAll(ctx, nil, append(preloads(), bySortThenID())...)
}

// FindPage 分页查询
func (s *Service) FindPage(ctx context.Context, params *dal.ListParams) (*dal.PagedResult[model.Department], error) {
	return s.FindPageByPredicate(ctx, params, nil)
}

// FindPageByPredicate 按条件分页查询，params.Filter 与 predicate 以 AND 组合
func (s *Service) FindPageByPredicate(ctx context.Context, params *dal.ListParams, predicate ssql.Expression) (*dal.PagedResult[model.Department], error) {
	if params == nil {
		params = &dal.ListParams{}
	}
	return s.collection.GetList(ctx, params, predicate)
}

// Search 按查询内容分页查询
func (s *Service) Search(ctx context.Context, params *dal.ListParams, content map[string]any) (*dal.PagedResult[model.Department], error) {
	predicate, err := OnSearch(content)
	if err != nil {
		return nil, err
	}
	return s.FindPageByPredicate(ctx, params, predicate)
}

// FindAllAvailable 可用部门，结果缓存，任何变更后失效
func (s *Service) FindAllAvailable(ctx context.Context) ([]model.Department, error) {
	var cached []model.Department
	hit, err := s.cache.GetJSON(ctx, CacheKeyAvailable, &cached)
	if err != nil {
		s.log.Warn("read available departments cache", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	list, err := s.repo.FindAll(ctx, ssql.Where().Eq("available", true).Build(), append(preloads(), bySortThenID())...)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, CacheKeyAvailable, list, s.ttl); err != nil {
		s.log.Warn("write available departments cache", zap.Error(err))
	}
	return list, nil
}

// CheckCodeUnique 编码是否未被其他部门使用，id 大于 0 时排除该部门
func (s *Service) CheckCodeUnique(ctx context.Context, code string, id int64) (bool, error) {
	exists, err := s.repo.ExistsByCode(ctx, code, id)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// FindChildrenIDs 子树ID，包含自身
func (s *Service) FindChildrenIDs(ctx context.Context, id int64) ([]int64, error) {
	return s.repo.FindChildrenIDs(ctx, id)
}

// FindRelationalAll 按条件查询并填充直接下级数量，按 sort 升序
func (s *Service) FindRelationalAll(ctx context.Context, predicate ssql.Expression) ([]model.Department, error) {
	list, err := s.repo.FindAll(ctx, predicate, append(preloads(), bySortThenID())...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := utils.Map(list, func(d model.Department) int64 { return d.ID })
	counts, err := s.repo.CountChildren(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].CountOfChildren = counts[list[i].ID]
	}
	return list, nil
}

// Relational 按上级ID查询关联列表
func (s *Service) Relational(ctx context.Context, content map[string]any) ([]model.Department, error) {
	return s.FindRelationalAll(ctx, OnRelationalSearch(content))
}

// FindForExport 导出用的全量列表
func (s *Service) FindForExport(ctx context.Context, params *dal.ListParams, content map[string]any) ([]model.Department, error) {
	predicate, err := OnSearch(content)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &dal.ListParams{}
	}
	return s.collection.GetFullList(ctx, params, predicate)
}

func (s *Service) checkCode(ctx context.Context, code string, excludeID int64) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return errors.Duplicate("部门编码")
	}
	return nil
}

// checkRefs 上级部门与机构必须存在
func (s *Service) checkRefs(ctx context.Context, dept *model.Department) error {
	if dept.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *dept.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return errors.NotFound("上级部门")
		}
	}
	if dept.OrganizationID != nil && s.orgs != nil {
		org, err := s.orgs.FindByID(ctx, *dept.OrganizationID)
		if err != nil {
			return err
		}
		if org == nil {
			return errors.NotFound("机构")
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, CacheKeyAvailable); err != nil {
		s.log.Warn("invalidate available departments cache", zap.Error(err))
	}
}
