package ssql

import "gorm.io/gorm"

// Scope 将表达式转换为 gorm scope，nil 表达式不添加条件
func Scope(expr Expression, dialect Dialect) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if expr == nil {
			return db
		}
		sql, args := expr.ToSQL(dialect)
		if sql == "" {
			return db
		}
		return db.Where(sql, args...)
	}
}

// DialectOf 按 gorm 连接的方言名选择方言
func DialectOf(db *gorm.DB) Dialect {
	return NewGormDialect(db.Dialector.Name())
}
