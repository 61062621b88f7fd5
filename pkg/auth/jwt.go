package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/orgadmin/pkg/config"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenInvalid   = errors.New("token is invalid")
)

// Claims 访问令牌携带的操作人信息，RoleCode 供 casbin 鉴权
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	RoleCode string `json:"roleCode"`
	jwt.RegisteredClaims
}

// JWTManager 使用 HS256 签发与校验访问令牌
type JWTManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
}

func NewJWTManager(cfg *config.JWTConfig) *JWTManager {
	return &JWTManager{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.Expire) * time.Second,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// GenerateToken 签发令牌，有效期取 jwt.expire 秒
func (m *JWTManager) GenerateToken(userID int64, username, roleCode string) (string, error) {
	issuedAt := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   userID,
		Username: username,
		RoleCode: roleCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}).SignedString(m.key)
}

// ParseToken 校验签名与有效期，错误统一转换为本包的 ErrToken*
func (m *JWTManager) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, err := m.parser.ParseWithClaims(raw, claims, m.keyFunc); err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}
	return claims, nil
}

func (m *JWTManager) keyFunc(*jwt.Token) (interface{}, error) {
	return m.key, nil
}
