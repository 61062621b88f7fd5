package organization

import (
	"context"

	"github.com/orgadmin/pkg/dal"
	"github.com/orgadmin/pkg/ssql"
	"github.com/orgadmin/services/dept/internal/model"
	"gorm.io/gorm"
)

// Repository 机构仓储接口
type Repository interface {
	dal.Repository[model.Organization]
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// repository 机构仓储实现
type repository struct {
	*dal.BaseRepository[model.Organization]
}

// NewRepository 创建机构仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		BaseRepository: dal.NewBaseRepositoryWithDB[model.Organization](db),
	}
}

// ExistsByCode 检查编码是否存在
func (r *repository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.Exists(ctx, ssql.Where().Eq("code", code).Build())
}
