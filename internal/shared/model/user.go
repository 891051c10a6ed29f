package model

import (
	"strings"
	"time"
)

// UserRole 用户角色（封闭枚举）
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleAnalyst UserRole = "analyst"
	UserRoleViewer  UserRole = "viewer"
)

// DefaultUserRole 新用户默认角色
const DefaultUserRole = UserRoleViewer

// AllUserRoles 返回全部角色
func AllUserRoles() []UserRole {
	return []UserRole{UserRoleAdmin, UserRoleManager, UserRoleAnalyst, UserRoleViewer}
}

// Valid 角色是否属于封闭枚举
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleAnalyst, UserRoleViewer:
		return true
	}
	return false
}

// ParseUserRole 解析角色字符串（大小写不敏感）
func ParseUserRole(s string) (UserRole, bool) {
	r := UserRole(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// User 用户
type User struct {
	ID           string    `json:"id" db:"id" bson:"_id"`
	Email        string    `json:"email" db:"email" bson:"email"`
	FullName     string    `json:"full_name" db:"full_name" bson:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash" bson:"password_hash"` // never expose in JSON
	Role         UserRole  `json:"role" db:"role" bson:"role"`
	IsActive     bool      `json:"is_active" db:"is_active" bson:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// UserUpdate 用户部分更新，nil 字段保持不变
type UserUpdate struct {
	FullName *string
	Role     *UserRole
	IsActive *bool
}

// Empty 是否没有任何需要更新的字段
func (u UserUpdate) Empty() bool {
	return u.FullName == nil && u.Role == nil && u.IsActive == nil
}

// Apply 将更新应用到用户（内存实现与测试使用）
func (u UserUpdate) Apply(user *User) {
	if u.FullName != nil {
		user.FullName = *u.FullName
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
}

// NormalizeEmail 去除首尾空白并转小写，所有存储与查询前调用
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
