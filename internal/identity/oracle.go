package identity

import (
	"context"
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

// Principal 已认证的调用者。UserID 为 0 表示匿名。
type Principal struct {
	UserID uint
}

func (p Principal) Anonymous() bool {
	return p.UserID == 0
}

// RoleOracle 查询用户当前角色。角色以存储为准，不信任令牌中携带的角色。
type RoleOracle interface {
	Role(ctx context.Context, p Principal) (model.UserRole, error)
}

type resolvedRoleKey struct{}

type resolvedRole struct {
	userID uint
	role   model.UserRole
}

// WithResolvedRole 记录本次请求已查询到的角色，下游无需再次读取存储
func WithResolvedRole(ctx context.Context, p Principal, role model.UserRole) context.Context {
	return context.WithValue(ctx, resolvedRoleKey{}, resolvedRole{userID: p.UserID, role: role})
}

// ResolvedRole 仅当记录属于同一调用者时返回
func ResolvedRole(ctx context.Context, p Principal) (model.UserRole, bool) {
	r, ok := ctx.Value(resolvedRoleKey{}).(resolvedRole)
	if !ok || p.Anonymous() || r.userID != p.UserID {
		return "", false
	}
	return r.role, true
}

// HasRole 管理员通过所有角色校验
func HasRole(ctx context.Context, oracle RoleOracle, p Principal, roles ...model.UserRole) (bool, error) {
	role, err := oracle.Role(ctx, p)
	if err != nil {
		return false, err
	}
	if role == model.Admin {
		return true, nil
	}
	for _, r := range roles {
		if role == r {
			return true, nil
		}
	}
	return false, nil
}

type userFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// UserRoleOracle 基于用户表的角色查询
type UserRoleOracle struct {
	Users userFinder
}

func NewUserRoleOracle(users userFinder) *UserRoleOracle {
	return &UserRoleOracle{Users: users}
}

func (o *UserRoleOracle) Role(ctx context.Context, p Principal) (model.UserRole, error) {
	if p.Anonymous() {
		return "", util.ErrUnauthorized
	}
	user, err := o.Users.FindByID(ctx, p.UserID)
	if errors.Is(err, util.ErrUserNotFound) {
		return "", util.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if user.Disabled || !user.Role.Valid() {
		return "", util.ErrUnauthorized
	}
	return user.Role, nil
}
