package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/validation"
	"github.com/Michelle-Meira/gestao-trafego-pago/pkg/logging"
)

// 用户列表分页
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Service 注册、登录、改密与用户管理流程
type Service struct {
	users  storage.UserStore
	hasher *PasswordHasher
	tokens *TokenService
	events eventbus.AuthEventBus
	logger *logging.Logger
	now    func() time.Time

	dummy string
}

// NewService 创建认证服务，events 与 logger 可为 nil
func NewService(users storage.UserStore, hasher *PasswordHasher, tokens *TokenService, events eventbus.AuthEventBus, logger *logging.Logger) *Service {
	if events == nil {
		events = eventbus.NewNoOpEventBus()
	}
	if logger == nil {
		logger = logging.Default("auth")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		dummy:  hasher.dummyDigest(),
	}
}

// ============================================================================
// 输入输出类型
// ============================================================================

// RegisterInput 注册参数
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

// AdminUserUpdate 管理员更新用户参数
type AdminUserUpdate struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=3,max=100"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func (s *Service) publish(ctx context.Context, ev *eventbus.AuthEvent) {
	ev.Timestamp = s.now()
	if err := s.events.PublishAuthEvent(ctx, ev); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("publish auth event failed", "type", string(ev.Type))
	}
}

// ============================================================================
// 注册 / 登录 / 改密
// ============================================================================

// Register 创建用户
//
// 调用方为已认证管理员时才采用请求中的角色，其余情况一律为默认角色。
// 邮箱已存在时返回 ErrDuplicateEmail 且不写入任何数据。
func (s *Service) Register(ctx context.Context, in RegisterInput, caller *Identity) (*model.User, error) {
	in.Email = model.NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validation.Struct(in); err != nil {
		return nil, invalid(err)
	}

	role := model.DefaultUserRole
	if in.Role != "" {
		requested, ok := model.ParseUserRole(in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
		}
		if caller.IsAdmin() {
			role = requested
		}
	}

	existing, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.HashContext(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	actor := ""
	if caller != nil {
		actor = caller.UserID
	}
	s.publish(ctx, &eventbus.AuthEvent{
		Type:    eventbus.AuthEventRegistered,
		UserID:  user.ID,
		Email:   user.Email,
		ActorID: actor,
		Data:    map[string]string{"role": string(user.Role)},
	})
	s.logger.AuthEventLog(ctx, "register", user.Email, nil)
	return user, nil
}

// Login 校验凭据并签发访问令牌
//
// 未知邮箱与错误密码返回同一个 ErrInvalidCredentials；
// 只有密码正确后才会暴露账号已停用。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		s.loginFailed(ctx, email, "missing credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if user == nil {
		s.hasher.Verify(password, s.dummy)
		s.loginFailed(ctx, email, "unknown email")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, email, "wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.loginFailed(ctx, email, "inactive")
		return nil, ErrInactiveAccount
	}

	token, exp, err := s.tokens.Issue(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &eventbus.AuthEvent{Type: eventbus.AuthEventLogin, UserID: user.ID, Email: user.Email})
	s.logger.AuthEventLog(ctx, "login", user.Email, nil)
	return &LoginResult{AccessToken: token, TokenType: "bearer", ExpiresAt: exp, User: user}, nil
}

func (s *Service) loginFailed(ctx context.Context, email, reason string) {
	s.publish(ctx, &eventbus.AuthEvent{Type: eventbus.AuthEventLoginFailed, Email: email, Reason: reason})
	s.logger.AuthEventLog(ctx, "login_failed", email, errors.New(reason))
}

// ChangePassword 修改当前用户密码
func (s *Service) ChangePassword(ctx context.Context, caller *Identity, current, next string) error {
	if caller == nil {
		return ErrRejected
	}
	if err := validation.Var(next, "required,min=6"); err != nil {
		return fmt.Errorf("%w: new password must be at least 6 characters", ErrInvalidInput)
	}

	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return storage.ErrNotFound
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCurrentPassword
	}

	hash, err := s.hasher.HashContext(ctx, next)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.publish(ctx, &eventbus.AuthEvent{Type: eventbus.AuthEventPasswordChanged, UserID: user.ID, Email: user.Email})
	return nil
}

// ============================================================================
// 当前用户
// ============================================================================

// Me 返回认证时读取的用户
func (s *Service) Me(caller *Identity) (*model.User, error) {
	if caller == nil || caller.User == nil {
		return nil, ErrRejected
	}
	return caller.User, nil
}

// UpdateMe 修改当前用户姓名（角色与状态只能由管理员修改）
func (s *Service) UpdateMe(ctx context.Context, caller *Identity, fullName string) (*model.User, error) {
	if caller == nil {
		return nil, ErrRejected
	}
	fullName = strings.TrimSpace(fullName)
	if err := validation.Var(fullName, "required,min=3,max=100"); err != nil {
		return nil, fmt.Errorf("%w: full_name must be 3 to 100 characters", ErrInvalidInput)
	}
	if err := s.users.UpdateUser(ctx, caller.UserID, model.UserUpdate{FullName: &fullName}); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, caller.UserID)
}

// ============================================================================
// 用户管理（管理员）
// ============================================================================

// ListUsers 分页列出用户，limit 为 0 时取默认值
func (s *Service) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must be non-negative", ErrInvalidInput)
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.users.ListUsers(ctx, skip, limit)
}

// GetUser 按 ID 查询用户，不存在时返回 storage.ErrNotFound
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

// UpdateUser 管理员修改用户姓名、角色或状态
func (s *Service) UpdateUser(ctx context.Context, caller *Identity, id string, in AdminUserUpdate) (*model.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, invalid(err)
	}

	var update model.UserUpdate
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		update.FullName = &name
	}
	if in.Role != nil {
		role, ok := model.ParseUserRole(*in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *in.Role)
		}
		update.Role = &role
	}
	update.IsActive = in.IsActive

	if caller != nil && caller.UserID == id {
		if (update.IsActive != nil && !*update.IsActive) || (update.Role != nil && *update.Role != model.UserRoleAdmin) {
			return nil, fmt.Errorf("%w: administrators cannot deactivate or demote themselves", ErrInvalidInput)
		}
	}

	if !update.Empty() {
		if err := s.users.UpdateUser(ctx, id, update); err != nil {
			return nil, err
		}
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	data := map[string]string{"role": string(user.Role), "is_active": fmt.Sprint(user.IsActive)}
	s.publish(ctx, &eventbus.AuthEvent{
		Type:    eventbus.AuthEventUserUpdated,
		UserID:  user.ID,
		Email:   user.Email,
		ActorID: actorID(caller),
		Data:    data,
	})
	return user, nil
}

// DeleteUser 删除用户，管理员不能删除自己
func (s *Service) DeleteUser(ctx context.Context, caller *Identity, id string) error {
	if caller != nil && caller.UserID == id {
		return fmt.Errorf("%w: administrators cannot delete themselves", ErrInvalidInput)
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, &eventbus.AuthEvent{Type: eventbus.AuthEventUserDeleted, UserID: id, ActorID: actorID(caller)})
	return nil
}

func actorID(caller *Identity) string {
	if caller == nil {
		return ""
	}
	return caller.UserID
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// EnsureAdminUser 确保管理员用户存在（启动时调用）
//
// 邮箱或密码为空时不做任何事。用户已存在时不改动启用状态；
// 仅当配置的密码与已存储的哈希匹配时才把非管理员账号提升为管理员。
func (s *Service) EnsureAdminUser(ctx context.Context, email, password string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		if !existing.IsActive {
			s.logger.Warn("admin user is deactivated, leaving it unchanged", "email", email, "user_id", existing.ID)
		}
		if existing.Role == model.UserRoleAdmin {
			return existing, nil
		}
		if !s.hasher.Verify(password, existing.PasswordHash) {
			s.logger.Warn("user with admin email exists but password does not match, not promoting", "email", email, "user_id", existing.ID)
			return existing, nil
		}
		role := model.UserRoleAdmin
		if err := s.users.UpdateUser(ctx, existing.ID, model.UserUpdate{Role: &role}); err != nil {
			return nil, fmt.Errorf("promote admin user: %w", err)
		}
		s.logger.Info("promoted user to admin", "email", email, "user_id", existing.ID)
		return s.GetUser(ctx, existing.ID)
	}

	hash, err := s.hasher.HashContext(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}
	s.logger.Info("created admin user", "email", email, "user_id", user.ID)
	return user, nil
}
