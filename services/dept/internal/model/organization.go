package model

import (
	"github.com/orgadmin/pkg/dal"
)

// Organization 机构模型
type Organization struct {
	dal.Model
	Code        string `gorm:"size:50;index;not null" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// TableName 表名
func (Organization) TableName() string {
	return "sys_organization"
}

// All 需要迁移的模型
func All() []interface{} {
	return []interface{}{&Organization{}, &Department{}}
}
