package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
)

const userColumns = `id, email, full_name, password_hash, role, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser 创建用户，邮箱重复时返回 storage.ErrDuplicate
func (r *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`),
		user.ID, user.Email, user.FullName, user.PasswordHash,
		user.Role, user.IsActive, user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	return r.translate(err)
}

// GetUserByEmail 通过邮箱查找用户
func (r *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE email = $1`), email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// GetUserByID 通过 ID 查找用户
func (r *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// UpdateUserPassword 更新用户密码
func (r *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return expectOne(r.db.ExecContext(ctx, r.rebind(
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`),
		passwordHash, time.Now().UTC(), id,
	))
}

// UpdateUser 部分更新用户（姓名、角色、启用状态）
func (r *Store) UpdateUser(ctx context.Context, id string, update model.UserUpdate) error {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if update.FullName != nil {
		add("full_name", *update.FullName)
	}
	if update.Role != nil {
		add("role", string(*update.Role))
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return expectOne(r.db.ExecContext(ctx, r.rebind(query), args...))
}

// DeleteUser 删除用户
func (r *Store) DeleteUser(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, r.rebind(`DELETE FROM users WHERE id = $1`), id))
}

// ListUsers 分页列出用户（按创建时间升序）
func (r *Store) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`),
		limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers 用户总数
func (r *Store) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, "users")
}
