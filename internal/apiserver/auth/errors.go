package auth

import "errors"

// ============================================================================
// 错误分类
// ============================================================================

var (
	// ErrInvalidInput 请求参数不合法（字段格式、密码长度、角色取值）
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEmail 邮箱已注册
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials 邮箱不存在或密码错误（两种情况不区分）
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInactiveAccount 账号已停用
	ErrInactiveAccount = errors.New("account is inactive")

	// ErrRejected 令牌无效、过期，或对应用户不存在/已停用
	ErrRejected = errors.New("authentication rejected")

	// ErrForbidden 已认证但角色不满足要求
	ErrForbidden = errors.New("insufficient permissions")

	// ErrInvalidCurrentPassword 修改密码时当前密码不正确
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")

	// ErrInvalidToken 令牌签名、算法、格式或有效期校验失败
	ErrInvalidToken = errors.New("invalid or expired token")
)
