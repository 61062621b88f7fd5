package ssql

// Builder SSQL构建器
type Builder struct {
	expressions []Expression
	logic       LogicOperator
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{
		expressions: make([]Expression, 0),
		logic:       LogicAnd,
	}
}

// And 设置为AND逻辑
func (b *Builder) And() *Builder {
	b.logic = LogicAnd
	return b
}

// Or 设置为OR逻辑
func (b *Builder) Or() *Builder {
	b.logic = LogicOr
	return b
}

func (b *Builder) add(field string, op Operator, value interface{}) *Builder {
	b.expressions = append(b.expressions, &FieldExpression{
		Field:    field,
		Operator: op,
		Value:    value,
	})
	return b
}

// Eq 等于
func (b *Builder) Eq(field string, value interface{}) *Builder {
	return b.add(field, OpEq, value)
}

// Neq 不等于
func (b *Builder) Neq(field string, value interface{}) *Builder {
	return b.add(field, OpNeq, value)
}

// Gt 大于
func (b *Builder) Gt(field string, value interface{}) *Builder {
	return b.add(field, OpGt, value)
}

// Gte 大于等于
func (b *Builder) Gte(field string, value interface{}) *Builder {
	return b.add(field, OpGte, value)
}

// Lt 小于
func (b *Builder) Lt(field string, value interface{}) *Builder {
	return b.add(field, OpLt, value)
}

// Lte 小于等于
func (b *Builder) Lte(field string, value interface{}) *Builder {
	return b.add(field, OpLte, value)
}

// Like 模糊匹配
func (b *Builder) Like(field string, value string) *Builder {
	return b.add(field, OpLike, value)
}

// NotLike 不匹配
func (b *Builder) NotLike(field string, value string) *Builder {
	return b.add(field, OpNotLike, value)
}

// In 在列表中
func (b *Builder) In(field string, values ...interface{}) *Builder {
	return b.add(field, OpIn, values)
}

// NotIn 不在列表中
func (b *Builder) NotIn(field string, values ...interface{}) *Builder {
	return b.add(field, OpNotIn, values)
}

// IsNull 为空
func (b *Builder) IsNull(field string) *Builder {
	return b.add(field, OpIsNull, nil)
}

// NotNull 不为空
func (b *Builder) NotNull(field string) *Builder {
	return b.add(field, OpNotNull, nil)
}

// Between 在范围内
func (b *Builder) Between(field string, start, end interface{}) *Builder {
	return b.add(field, OpBetween, []interface{}{start, end})
}

// InSubquery 字段值在关联表子查询结果中
func (b *Builder) InSubquery(field, table, column string, fn func(*Builder)) *Builder {
	sub := NewBuilder()
	fn(sub)
	b.expressions = append(b.expressions, &SubqueryExpression{
		Field:  field,
		Table:  table,
		Column: column,
		Inner:  sub.Build(),
	})
	return b
}

// Group 添加分组表达式
func (b *Builder) Group(fn func(*Builder)) *Builder {
	subBuilder := NewBuilder()
	fn(subBuilder)
	expr := subBuilder.Build()
	if expr != nil {
		b.expressions = append(b.expressions, &GroupExpression{Inner: expr})
	}
	return b
}

// Expr 添加子表达式
func (b *Builder) Expr(expr Expression) *Builder {
	if expr != nil {
		b.expressions = append(b.expressions, expr)
	}
	return b
}

// If 条件成立时才应用 fn
func (b *Builder) If(cond bool, fn func(*Builder)) *Builder {
	if cond {
		fn(b)
	}
	return b
}

// Len 已添加的表达式数量
func (b *Builder) Len() int {
	return len(b.expressions)
}

// Build 构建表达式，无条件时返回 nil
func (b *Builder) Build() Expression {
	if len(b.expressions) == 0 {
		return nil
	}

	if len(b.expressions) == 1 {
		return b.expressions[0]
	}

	exprs := make([]Expression, len(b.expressions))
	copy(exprs, b.expressions)
	return &LogicExpression{
		Logic:       b.logic,
		Expressions: exprs,
	}
}

// String 转换为SSQL字符串
func (b *Builder) String() string {
	return Build(b.Build())
}

// ToSQL 转换为SQL
func (b *Builder) ToSQL(dialect Dialect) (string, []interface{}) {
	expr := b.Build()
	if expr == nil {
		return "", nil
	}
	return expr.ToSQL(dialect)
}

// Where 创建AND条件构建器
func Where() *Builder {
	return NewBuilder().And()
}

// WhereOr 创建OR条件构建器
func WhereOr() *Builder {
	return NewBuilder().Or()
}
