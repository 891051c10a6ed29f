package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes bcrypt 只处理前 72 字节，超出部分一律拒绝而不是截断
const MaxPasswordBytes = 72

// DefaultBcryptCost 默认 bcrypt 成本
const DefaultBcryptCost = 12

// PasswordHasher bcrypt 密码哈希器
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher 创建哈希器，cost 超出 bcrypt 允许范围时取边界值，0 表示默认值
func NewPasswordHasher(cost int) *PasswordHasher {
	switch {
	case cost == 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost 实际使用的成本
func (h *PasswordHasher) Cost() int { return h.cost }

func checkPlaintext(plaintext string) error {
	if plaintext == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(plaintext) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordBytes)
	}
	return nil
}

// Hash 生成带随机盐的摘要，同一明文两次调用结果不同
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if err := checkPlaintext(plaintext); err != nil {
		return "", err
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// HashContext 在开始计算前检查 ctx，已取消的请求不再消耗 CPU
func (h *PasswordHasher) HashContext(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return h.Hash(plaintext)
}

// Verify 校验明文与摘要是否匹配，摘要格式错误或明文不合法时返回 false
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	if checkPlaintext(plaintext) != nil || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// dummyDigest 用于未知邮箱登录时执行一次等价的比较
func (h *PasswordHasher) dummyDigest() string {
	digest, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), h.cost)
	if err != nil {
		return ""
	}
	return string(digest)
}
