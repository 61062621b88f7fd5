package ssql

import (
	"fmt"
	"strings"
)

// Operator 比较操作符
type Operator string

const (
	OpEq      Operator = "="
	OpNeq     Operator = "!="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpLike    Operator = "~"
	OpNotLike Operator = "!~"
	OpIn      Operator = "?="
	OpNotIn   Operator = "?!="
	OpIsNull  Operator = "?null"
	OpNotNull Operator = "?!null"
	OpBetween Operator = "><"
)

// LogicOperator 逻辑操作符
type LogicOperator string

const (
	LogicAnd LogicOperator = "&&"
	LogicOr  LogicOperator = "||"
)

// Expression 表达式接口
type Expression interface {
	ToSQL(dialect Dialect) (string, []interface{})
	Validate() error
	String() string
}

// FieldExpression 字段表达式
type FieldExpression struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// ToSQL 转换为SQL
func (e *FieldExpression) ToSQL(dialect Dialect) (string, []interface{}) {
	field := dialect.Quote(e.Field)
	op := dialect.OperatorSQL(e.Operator)

	switch e.Operator {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		if e.Value == nil {
			// 与 null 比较退化为空值判断
			if e.Operator == OpNeq {
				return fmt.Sprintf("%s IS NOT NULL", field), nil
			}
			if e.Operator == OpEq {
				return fmt.Sprintf("%s IS NULL", field), nil
			}
		}
		return fmt.Sprintf("%s %s %s", field, op, dialect.Placeholder(0)), []interface{}{e.Value}
	case OpLike, OpNotLike:
		return fmt.Sprintf("%s %s %s", field, op, dialect.Placeholder(0)), []interface{}{likePattern(e.Value)}
	case OpIn, OpNotIn:
		values := toSlice(e.Value)
		if len(values) == 0 {
			// 空集合: IN 恒假, NOT IN 恒真
			if e.Operator == OpIn {
				return "1 = 0", nil
			}
			return "1 = 1", nil
		}
		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = dialect.Placeholder(i)
		}
		return fmt.Sprintf("%s %s (%s)", field, op, strings.Join(placeholders, ", ")), values
	case OpIsNull, OpNotNull:
		return fmt.Sprintf("%s %s", field, op), nil
	case OpBetween:
		values := toSlice(e.Value)
		if len(values) >= 2 {
			return fmt.Sprintf("%s BETWEEN %s AND %s", field, dialect.Placeholder(0), dialect.Placeholder(1)), values[:2]
		}
		return "", nil
	default:
		return fmt.Sprintf("%s = %s", field, dialect.Placeholder(0)), []interface{}{e.Value}
	}
}

// Validate 验证表达式
func (e *FieldExpression) Validate() error {
	if e.Field == "" {
		return fmt.Errorf("field name is required")
	}
	if !validIdentifier(e.Field) {
		return fmt.Errorf("invalid field name %q", e.Field)
	}
	if e.Operator == OpBetween && len(toSlice(e.Value)) < 2 {
		return fmt.Errorf("between operator requires 2 values")
	}
	return nil
}

// String 转换为字符串表示
func (e *FieldExpression) String() string {
	switch e.Operator {
	case OpIn, OpNotIn, OpBetween:
		values := toSlice(e.Value)
		strValues := make([]string, len(values))
		for i, v := range values {
			strValues[i] = formatValue(v)
		}
		return fmt.Sprintf("%s %s [%s]", e.Field, e.Operator, strings.Join(strValues, ", "))
	case OpIsNull, OpNotNull:
		return fmt.Sprintf("%s %s", e.Field, e.Operator)
	default:
		return fmt.Sprintf("%s %s %s", e.Field, e.Operator, formatValue(e.Value))
	}
}

// LogicExpression 逻辑表达式
type LogicExpression struct {
	Logic       LogicOperator
	Expressions []Expression
}

// ToSQL 转换为SQL
func (e *LogicExpression) ToSQL(dialect Dialect) (string, []interface{}) {
	parts := make([]string, 0, len(e.Expressions))
	args := make([]interface{}, 0)

	for _, expr := range e.Expressions {
		if expr == nil {
			continue
		}
		sql, exprArgs := expr.ToSQL(dialect)
		if sql != "" {
			parts = append(parts, sql)
			args = append(args, exprArgs...)
		}
	}

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], args
	}

	connector := " AND "
	if e.Logic == LogicOr {
		connector = " OR "
	}

	return "(" + strings.Join(parts, connector) + ")", args
}

// Validate 验证表达式
func (e *LogicExpression) Validate() error {
	for _, expr := range e.Expressions {
		if expr == nil {
			continue
		}
		if err := expr.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String 转换为字符串表示
func (e *LogicExpression) String() string {
	parts := make([]string, 0, len(e.Expressions))
	for _, expr := range e.Expressions {
		if expr == nil {
			continue
		}
		s := expr.String()
		// 嵌套的逻辑表达式需加括号以保留优先级
		if _, nested := expr.(*LogicExpression); nested && s != "" {
			s = "(" + s + ")"
		}
		if s != "" {
			parts = append(parts, s)
		}
	}

	connector := " && "
	if e.Logic == LogicOr {
		connector = " || "
	}
	return strings.Join(parts, connector)
}

// GroupExpression 分组表达式(括号)
type GroupExpression struct {
	Inner Expression
}

// ToSQL 转换为SQL
func (e *GroupExpression) ToSQL(dialect Dialect) (string, []interface{}) {
	if e.Inner == nil {
		return "", nil
	}
	sql, args := e.Inner.ToSQL(dialect)
	if sql == "" {
		return "", nil
	}
	// 多项逻辑表达式自带括号
	if _, ok := e.Inner.(*LogicExpression); ok {
		return sql, args
	}
	return "(" + sql + ")", args
}

// Validate 验证表达式
func (e *GroupExpression) Validate() error {
	if e.Inner == nil {
		return fmt.Errorf("group expression inner is nil")
	}
	return e.Inner.Validate()
}

// String 转换为字符串表示
func (e *GroupExpression) String() string {
	if e.Inner == nil {
		return ""
	}
	return "(" + e.Inner.String() + ")"
}

// SubqueryExpression 关联表子查询: field IN (SELECT column FROM table WHERE inner)
// 用于按关联实体的属性过滤，例如按上级部门名称或所属机构名称
type SubqueryExpression struct {
	Field  string
	Table  string
	Column string
	Inner  Expression
	Not    bool
}

// ToSQL 转换为SQL
func (e *SubqueryExpression) ToSQL(dialect Dialect) (string, []interface{}) {
	op := OpIn
	if e.Not {
		op = OpNotIn
	}

	sub := fmt.Sprintf("SELECT %s FROM %s", dialect.Quote(e.Column), dialect.Quote(e.Table))
	var args []interface{}
	if e.Inner != nil {
		where, innerArgs := e.Inner.ToSQL(dialect)
		if where != "" {
			sub += " WHERE " + where
			args = innerArgs
		}
	}

	return fmt.Sprintf("%s %s (%s)", dialect.Quote(e.Field), dialect.OperatorSQL(op), sub), args
}

// Validate 验证表达式
func (e *SubqueryExpression) Validate() error {
	for _, ident := range []string{e.Field, e.Table, e.Column} {
		if !validIdentifier(ident) {
			return fmt.Errorf("invalid identifier %q in subquery", ident)
		}
	}
	if e.Inner != nil {
		return e.Inner.Validate()
	}
	return nil
}

// String 转换为字符串表示: field ?= table.column(inner)
func (e *SubqueryExpression) String() string {
	op := OpIn
	if e.Not {
		op = OpNotIn
	}
	inner := ""
	if e.Inner != nil {
		inner = e.Inner.String()
	}
	return fmt.Sprintf("%s %s %s.%s(%s)", e.Field, op, e.Table, e.Column, inner)
}

// And 以 AND 组合表达式，忽略 nil；全部为 nil 时返回 nil
func And(exprs ...Expression) Expression {
	return combine(LogicAnd, exprs)
}

// Or 以 OR 组合表达式，忽略 nil
func Or(exprs ...Expression) Expression {
	return combine(LogicOr, exprs)
}

func combine(logic LogicOperator, exprs []Expression) Expression {
	kept := make([]Expression, 0, len(exprs))
	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		// 同类逻辑表达式展平
		if le, ok := expr.(*LogicExpression); ok && le.Logic == logic {
			kept = append(kept, le.Expressions...)
			continue
		}
		kept = append(kept, expr)
	}

	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &LogicExpression{Logic: logic, Expressions: kept}
}

// likePattern 两侧补 %，值中的 % 原样保留
func likePattern(value interface{}) string {
	return "%" + fmt.Sprint(value) + "%"
}

// validIdentifier 标识符只允许字母、数字、下划线与点
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !(isLetter(ch) || isDigit(ch) || ch == '_' || ch == '.') {
			return false
		}
	}
	return !isDigit(s[0])
}

// toSlice 转换为切片
func toSlice(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	case []string:
		result := make([]interface{}, len(v))
		for i, s := range v {
			result[i] = s
		}
		return result
	case []int:
		result := make([]interface{}, len(v))
		for i, n := range v {
			result[i] = n
		}
		return result
	case []int64:
		result := make([]interface{}, len(v))
		for i, n := range v {
			result[i] = n
		}
		return result
	case []float64:
		result := make([]interface{}, len(v))
		for i, n := range v {
			result[i] = n
		}
		return result
	default:
		return []interface{}{value}
	}
}

// formatValue 格式化值为字符串
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}
