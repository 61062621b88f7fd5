package model

import (
	"github.com/orgadmin/pkg/dal"
)

// Department 部门模型
type Department struct {
	dal.Model
	Code           string        `gorm:"size:50;index;not null" json:"code"`
	Name           string        `gorm:"size:50;not null" json:"name"`
	Sort           int           `gorm:"default:0" json:"sort"`
	Available      bool          `gorm:"not null" json:"available"`
	ParentID       *int64        `gorm:"index" json:"parentId"`
	Parent         *Department   `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	OrganizationID *int64        `gorm:"index" json:"organizationId"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Description    string        `gorm:"size:255" json:"description"`

	// CountOfChildren 直接下级部门数量，仅关联查询时填充
	CountOfChildren int64 `gorm:"-" json:"countOfChildren"`
}

// TableName 表名
func (Department) TableName() string {
	return "sys_department"
}

// CopyFrom 以 src 的可编辑属性整体覆盖当前部门，ID 与时间戳保持不变
func (d *Department) CopyFrom(src *Department) {
	d.Code = src.Code
	d.Name = src.Name
	d.Sort = src.Sort
	d.Available = src.Available
	d.ParentID = src.ParentID
	d.OrganizationID = src.OrganizationID
	d.Description = src.Description
	d.Parent = nil
	d.Organization = nil
}
