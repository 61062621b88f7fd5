package department

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/orgadmin/pkg/dal"
	"github.com/orgadmin/pkg/ssql"
	"github.com/orgadmin/services/dept/internal/model"
	"gorm.io/gorm"
)

// Repository 部门仓储接口
type Repository interface {
	dal.Repository[model.Department]
	// ExistsByCode 检查编码是否已被占用，excludeID 非空时排除该部门
	ExistsByCode(ctx context.Context, code string, excludeID ...int64) (bool, error)
	// HasChildrenIn 是否存在上级在 ids 中的部门
	HasChildrenIn(ctx context.Context, ids []int64) (bool, error)
	// FindChildrenIDs 以 id 为根的子树ID，根在最前，按层级排序
	FindChildrenIDs(ctx context.Context, id int64) ([]int64, error)
	// CountChildren 按上级ID统计直接下级数量
	CountChildren(ctx context.Context, parentIDs []int64) (map[int64]int64, error)
	WithTx(tx *gorm.DB) Repository
}

// repository 部门仓储实现
type repository struct {
	*dal.BaseRepository[model.Department]
}

// NewRepository 创建部门仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		BaseRepository: dal.NewBaseRepositoryWithDB[model.Department](db),
	}
}

// WithTx 绑定事务
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

// ExistsByCode 检查编码是否存在
func (r *repository) ExistsByCode(ctx context.Context, code string, excludeID ...int64) (bool, error) {
	b := ssql.Where().Eq("code", code)
	if len(excludeID) > 0 && excludeID[0] > 0 {
		b.Neq("id", excludeID[0])
	}
	return r.Exists(ctx, b.Build())
}

// HasChildrenIn 检查是否存在下级部门
func (r *repository) HasChildrenIn(ctx context.Context, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return r.Exists(ctx, ssql.Where().In("parent_id", values...).Build())
}

// subtreeQuery 构建递归查询子树的 SQL
//
//	WITH RECURSIVE subtree(id, depth) AS (
//	  SELECT id, 0 FROM sys_department WHERE deleted_at IS NULL AND id = ?
//	  UNION ALL
//	  SELECT d.id, s.depth + 1 FROM sys_department d JOIN subtree s ON d.parent_id = s.id WHERE d.deleted_at IS NULL
//	)
//	SELECT id FROM subtree ORDER BY depth, id
func subtreeQuery(id int64) (string, []interface{}, error) {
	table := model.Department{}.TableName()

	anchor, anchorArgs, err := sq.Select("id", "0").
		From(table).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return "", nil, err
	}

	step, stepArgs, err := sq.Select("d.id", "s.depth + 1").
		From(table + " d").
		Join("subtree s ON d.parent_id = s.id").
		Where(sq.Eq{"d.deleted_at": nil}).
		ToSql()
	if err != nil {
		return "", nil, err
	}

	cte := "WITH RECURSIVE subtree(id, depth) AS (" + anchor + " UNION ALL " + step + ")"
	return sq.Select("id").
		From("subtree").
		Prefix(cte, append(anchorArgs, stepArgs...)...).
		OrderBy("depth", "id").
		PlaceholderFormat(sq.Question).
		ToSql()
}

// FindChildrenIDs 查询子树ID
func (r *repository) FindChildrenIDs(ctx context.Context, id int64) ([]int64, error) {
	query, args, err := subtreeQuery(id)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0)
	if err := r.Raw(ctx, query, args...).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// childCount 分组统计行
type childCount struct {
	ParentID int64
	Total    int64
}

// CountChildren 一次分组查询统计下级数量
func (r *repository) CountChildren(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	var rows []childCount
	err := r.DB().WithContext(ctx).
		Model(&model.Department{}).
		Select("parent_id, COUNT(*) AS total").
		Where("parent_id IN ?", parentIDs).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ParentID] = row.Total
	}
	return counts, nil
}
