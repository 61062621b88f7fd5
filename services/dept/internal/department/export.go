package department

import (
	"io"

	"github.com/orgadmin/services/dept/internal/model"
	"github.com/xuri/excelize/v2"
)

// ExportSheet 导出工作表名
const ExportSheet = "部门"

var exportHeaders = []interface{}{"ID", "编码", "名称", "排序", "状态", "上级部门", "所属机构", "描述", "创建时间"}

// WriteXLSX 将部门列表写为 xlsx
func WriteXLSX(w io.Writer, list []model.Department) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeaders); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(ExportSheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(ExportSheet, "A", "I", 16); err != nil {
		return err
	}

	for i, d := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			d.ID,
			d.Code,
			d.Name,
			d.Sort,
			availableText(d.Available),
			parentName(&d),
			organizationName(&d),
			d.Description,
			d.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func availableText(available bool) string {
	if available {
		return "可用"
	}
	return "停用"
}

func parentName(d *model.Department) string {
	if d.Parent == nil {
		return ""
	}
	return d.Parent.Name
}

func organizationName(d *model.Department) string {
	if d.Organization == nil {
		return ""
	}
	return d.Organization.Name
}
