package ssql

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType 词法单元类型
type TokenType int

const (
	TokenField    TokenType = iota // 字段名
	TokenOperator                  // 操作符
	TokenValue                     // 值
	TokenLogicAnd                  // &&
	TokenLogicOr                   // ||
	TokenLParen                    // (
	TokenRParen                    // )
	TokenLBracket                  // [
	TokenRBracket                  // ]
	TokenComma                     // ,
	TokenEOF                       // 结束
)

var tokenNames = map[TokenType]string{
	TokenField:    "field",
	TokenOperator: "operator",
	TokenValue:    "value",
	TokenLogicAnd: "'&&'",
	TokenLogicOr:  "'||'",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenComma:    "','",
	TokenEOF:      "end of input",
}

// String 词法单元类型名称
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token 词法单元
type Token struct {
	Type  TokenType
	Value string
	Pos   int

	quoted bool
}

// Lexer 词法分析器，按 rune 读取以支持中文字段值与标识符
type Lexer struct {
	input   []rune
	pos     int
	readPos int
	ch      rune
}

// NewLexer 创建词法分析器
func NewLexer(input string) *Lexer {
	l := &Lexer{input: []rune(input)}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// Tokenize 词法分析
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token

	for {
		l.skipWhitespace()

		if l.ch == 0 {
			tokens = append(tokens, Token{Type: TokenEOF, Pos: l.pos})
			return tokens, nil
		}

		token, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
}

func (l *Lexer) nextToken() (Token, error) {
	pos := l.pos

	switch l.ch {
	case '(':
		l.readChar()
		return Token{Type: TokenLParen, Value: "(", Pos: pos}, nil
	case ')':
		l.readChar()
		return Token{Type: TokenRParen, Value: ")", Pos: pos}, nil
	case '[':
		l.readChar()
		return Token{Type: TokenLBracket, Value: "[", Pos: pos}, nil
	case ']':
		l.readChar()
		return Token{Type: TokenRBracket, Value: "]", Pos: pos}, nil
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Value: ",", Pos: pos}, nil
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenLogicAnd, Value: "&&", Pos: pos}, nil
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenLogicOr, Value: "||", Pos: pos}, nil
		}
	case '\'', '"':
		return l.readString()
	case '=', '!', '>', '<', '~', '?':
		return l.readOperator()
	}

	if isDigitRune(l.ch) || (l.ch == '-' && isDigitRune(l.peekChar())) {
		return l.readNumber(), nil
	}

	if unicode.IsLetter(l.ch) || l.ch == '_' {
		return l.readIdentifier(), nil
	}

	return Token{}, fmt.Errorf("unexpected character '%c' at position %d", l.ch, l.pos)
}

// readIdentifier 读取标识符(字段名或 true/false/null)
func (l *Lexer) readIdentifier() Token {
	pos := l.pos
	var sb strings.Builder

	for unicode.IsLetter(l.ch) || isDigitRune(l.ch) || l.ch == '_' || l.ch == '.' {
		sb.WriteRune(l.ch)
		l.readChar()
	}

	value := sb.String()
	switch strings.ToLower(value) {
	case "true", "false", "null":
		return Token{Type: TokenValue, Value: value, Pos: pos}
	}
	return Token{Type: TokenField, Value: value, Pos: pos}
}

// readOperator 读取操作符: =, !=, >, >=, <, <=, ~, !~, ?=, ?!=, ?null, ?!null, ><
func (l *Lexer) readOperator() (Token, error) {
	pos := l.pos
	var sb strings.Builder
	write := func() {
		sb.WriteRune(l.ch)
		l.readChar()
	}

	switch l.ch {
	case '=', '~':
		write()
	case '!':
		write()
		if l.ch == '=' || l.ch == '~' {
			write()
		}
	case '>':
		write()
		if l.ch == '=' || l.ch == '<' {
			write()
		}
	case '<':
		write()
		if l.ch == '=' {
			write()
		}
	case '?':
		write()
		if l.ch == '!' {
			write()
		}
		if l.ch == '=' {
			write()
		} else {
			for unicode.IsLetter(l.ch) {
				write()
			}
		}
	}

	op := sb.String()
	if !knownOperator(op) {
		return Token{}, fmt.Errorf("unknown operator '%s' at position %d", op, pos)
	}
	return Token{Type: TokenOperator, Value: op, Pos: pos}, nil
}

// readString 读取字符串，支持 \n \t \r \\ \' \" 转义
func (l *Lexer) readString() (Token, error) {
	pos := l.pos
	quote := l.ch
	l.readChar()

	var sb strings.Builder
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case 0:
				return Token{}, fmt.Errorf("unterminated string at position %d", pos)
			default:
				sb.WriteRune(l.ch)
			}
		} else {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch == 0 {
		return Token{}, fmt.Errorf("unterminated string at position %d", pos)
	}
	l.readChar()

	// 引号内的值始终是字符串
	return Token{Type: TokenValue, Value: sb.String(), Pos: pos, quoted: true}, nil
}

func (l *Lexer) readNumber() Token {
	pos := l.pos
	var sb strings.Builder

	if l.ch == '-' {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	for isDigitRune(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' && isDigitRune(l.peekChar()) {
		sb.WriteRune(l.ch)
		l.readChar()
		for isDigitRune(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}

	return Token{Type: TokenValue, Value: sb.String(), Pos: pos}
}

func knownOperator(op string) bool {
	switch Operator(op) {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike, OpNotLike,
		OpIn, OpNotIn, OpIsNull, OpNotNull, OpBetween:
		return true
	}
	return false
}

func isDigitRune(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// isLetter 是否为字母
func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

// isDigit 是否为数字
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
