package service

import (
	"context"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
)

// UserService 管理员维护用户角色
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

// CreateUser 指定角色创建用户，供命令行初始化教师和管理员账号
func (s *UserService) CreateUser(ctx context.Context, name, email, password string, role model.UserRole) (*model.User, error) {
	return createUser(ctx, s.UserRepo, name, email, password, role)
}

// UpdateRole 修改角色，下一次请求立即生效
func (s *UserService) UpdateRole(ctx context.Context, id uint, role model.UserRole) (*model.User, error) {
	if !role.Valid() {
		return nil, util.InvalidInput("unknown role %q", role)
	}
	if err := s.UserRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(ctx, id)
}
