package ssql

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser 语法分析器
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser 创建语法分析器
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse 解析并校验SSQL字符串，空串返回 nil
func Parse(input string) (Expression, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, fmt.Errorf("lexer error: %w", err)
	}

	expr, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	if expr != nil {
		if err := expr.Validate(); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

// Parse 解析全部 token，多余 token 视为错误
func (p *Parser) Parse() (Expression, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %s '%s' at position %d", tok.Type, tok.Value, tok.Pos)
	}
	return expr, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	token := p.current()
	p.pos++
	return token
}

func (p *Parser) expect(tokenType TokenType) (Token, error) {
	token := p.current()
	if token.Type != tokenType {
		return Token{}, fmt.Errorf("expected %s, got %s at position %d", tokenType, token.Type, token.Pos)
	}
	p.advance()
	return token, nil
}

func (p *Parser) parseExpression() (Expression, error) {
	return p.parseOr()
}

// parseOr 解析OR表达式
func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenLogicOr {
		p.advance()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, fmt.Errorf("missing expression after '||'")
		}

		if logicExpr, ok := left.(*LogicExpression); ok && logicExpr.Logic == LogicOr {
			logicExpr.Expressions = append(logicExpr.Expressions, right)
		} else {
			left = &LogicExpression{
				Logic:       LogicOr,
				Expressions: []Expression{left, right},
			}
		}
	}

	return left, nil
}

// parseAnd 解析AND表达式
func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenLogicAnd {
		p.advance()

		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, fmt.Errorf("missing expression after '&&'")
		}

		if logicExpr, ok := left.(*LogicExpression); ok && logicExpr.Logic == LogicAnd {
			logicExpr.Expressions = append(logicExpr.Expressions, right)
		} else {
			left = &LogicExpression{
				Logic:       LogicAnd,
				Expressions: []Expression{left, right},
			}
		}
	}

	return left, nil
}

func (p *Parser) parsePrimary() (Expression, error) {
	token := p.current()

	switch token.Type {
	case TokenLParen:
		return p.parseGroup()
	case TokenField:
		return p.parseField()
	case TokenEOF:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected %s '%s' at position %d", token.Type, token.Value, token.Pos)
	}
}

// parseGroup 解析分组表达式
func (p *Parser) parseGroup() (Expression, error) {
	open := p.advance()

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, fmt.Errorf("empty group at position %d", open.Pos)
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, fmt.Errorf("expected ')' to close group opened at position %d", open.Pos)
	}

	return &GroupExpression{Inner: expr}, nil
}

// parseField 解析字段表达式
func (p *Parser) parseField() (Expression, error) {
	fieldToken := p.advance()

	opToken, err := p.expect(TokenOperator)
	if err != nil {
		return nil, fmt.Errorf("expected operator after field '%s'", fieldToken.Value)
	}

	operator := Operator(opToken.Value)

	switch operator {
	case OpIsNull, OpNotNull:
		return &FieldExpression{Field: fieldToken.Value, Operator: operator}, nil
	case OpIn, OpNotIn:
		// field ?= table.column(inner)
		if p.current().Type == TokenField {
			return p.parseSubquery(fieldToken.Value, operator == OpNotIn)
		}
	}

	value, err := p.parseValue(operator)
	if err != nil {
		return nil, err
	}

	return &FieldExpression{
		Field:    fieldToken.Value,
		Operator: operator,
		Value:    value,
	}, nil
}

// parseSubquery 解析关联表子查询，table.column 按最后一个 . 拆分
func (p *Parser) parseSubquery(field string, not bool) (Expression, error) {
	target := p.advance()

	idx := strings.LastIndex(target.Value, ".")
	if idx <= 0 || idx == len(target.Value)-1 {
		return nil, fmt.Errorf("subquery target must be table.column, got '%s' at position %d", target.Value, target.Pos)
	}

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, fmt.Errorf("expected '(' after subquery target '%s'", target.Value)
	}

	var inner Expression
	if p.current().Type != TokenRParen {
		var err error
		inner, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, fmt.Errorf("expected ')' to close subquery on '%s'", target.Value)
	}

	return &SubqueryExpression{
		Field:  field,
		Table:  target.Value[:idx],
		Column: target.Value[idx+1:],
		Inner:  inner,
		Not:    not,
	}, nil
}

func (p *Parser) parseValue(operator Operator) (interface{}, error) {
	if operator == OpIn || operator == OpNotIn || operator == OpBetween {
		return p.parseArray()
	}

	token := p.current()
	if token.Type != TokenValue {
		return nil, fmt.Errorf("expected value at position %d, got %s '%s'", token.Pos, token.Type, token.Value)
	}
	p.advance()

	return convertToken(token), nil
}

// parseArray 解析数组 [v1, v2, ...]
func (p *Parser) parseArray() ([]interface{}, error) {
	if _, err := p.expect(TokenLBracket); err != nil {
		return nil, fmt.Errorf("expected '[' for array value")
	}

	values := make([]interface{}, 0)
	for p.current().Type != TokenRBracket {
		tok := p.current()
		if tok.Type != TokenValue {
			return nil, fmt.Errorf("expected array element at position %d, got %s", tok.Pos, tok.Type)
		}
		values = append(values, convertToken(tok))
		p.advance()

		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		if p.current().Type != TokenRBracket {
			return nil, fmt.Errorf("expected ',' or ']' at position %d", p.current().Pos)
		}
	}
	p.advance()

	return values, nil
}

func convertToken(tok Token) interface{} {
	if tok.quoted {
		return tok.Value
	}
	return convertValue(tok.Value)
}

// convertValue 转换值的类型
func convertValue(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}

	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// Build 构建SSQL字符串
func Build(expr Expression) string {
	if expr == nil {
		return ""
	}
	return expr.String()
}

// ToSQL 将SSQL转换为SQL
func ToSQL(ssqlStr string, dialect Dialect) (string, []interface{}, error) {
	expr, err := Parse(ssqlStr)
	if err != nil {
		return "", nil, err
	}
	if expr == nil {
		return "", nil, nil
	}

	sql, args := expr.ToSQL(dialect)
	return sql, args, nil
}

// ToMySQLSQL 转换为MySQL SQL
func ToMySQLSQL(ssqlStr string) (string, []interface{}, error) {
	return ToSQL(ssqlStr, NewMySQLDialect())
}

// ToPostgreSQLSQL 转换为PostgreSQL SQL
func ToPostgreSQLSQL(ssqlStr string) (string, []interface{}, error) {
	return ToSQL(ssqlStr, NewPostgreSQLDialect())
}
