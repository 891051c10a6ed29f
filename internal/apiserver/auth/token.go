package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
)

// TokenConfig 令牌服务配置
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// TokenClaims 访问令牌声明，sub 为用户邮箱
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string         `json:"user_id"`
	Role   model.UserRole `json:"role"`
}

// TokenService HS256 访问令牌签发与校验
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService 创建令牌服务，secret 为空视为配置错误
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("auth: negative token ttl %s", cfg.TTL)
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// WithClock 替换时钟（测试用）
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// TTL 默认有效期
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue 按配置的有效期签发令牌
func (s *TokenService) Issue(subject, userID string, role model.UserRole) (string, time.Time, error) {
	return s.IssueWithTTL(subject, userID, role, s.ttl)
}

// IssueWithTTL 签发令牌，ttl 为 0 时令牌立即失效
func (s *TokenService) IssueWithTTL(subject, userID string, role model.UserRole, ttl time.Duration) (string, time.Time, error) {
	if subject == "" || userID == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: incomplete token claims", ErrInvalidInput)
	}

	now := s.now()
	exp := now.Add(ttl)
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Role:   role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// Verify 校验签名、算法与有效期，返回签发时写入的声明
//
// 不查询用户目录：用户是否仍存在、是否启用由 Authenticator 判断。
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	now := s.now()
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// jwt 的 exp 判断为 now > exp，这里收紧为 now >= exp
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: token is expired", ErrInvalidToken)
	}
	if claims.Subject == "" || claims.UserID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return claims, nil
}
