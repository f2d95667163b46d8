package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrEmployeeNoExists   = errors.New("工号已存在")
	ErrEmailExists        = errors.New("邮箱已存在")
	ErrDepartmentNotFound = errors.New("部门不存在")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
	ErrNoPermission       = errors.New("无权操作")
)

// UserService 用户业务接口
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest, callerRole, callerDeptID string) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	// 检查工号唯一性
	if _, err := s.repo.User.GetByEmployeeNo(ctx, req.EmployeeNo); err == nil {
		return nil, ErrEmployeeNoExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 检查邮箱唯一性
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 检查部门存在
	if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleInstructor
	}

	user := &model.User{
		Name:               req.Name,
		EmployeeNo:         req.EmployeeNo,
		Email:              req.Email,
		PasswordHash:       string(hash),
		Role:               role,
		DepartmentID:       req.DepartmentID,
		MustChangePassword: true,
		VersionedModel:     model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 重新加载以获取关联数据（部门等）
	created, err := s.repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	return s.toUserResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest, callerRole, callerDeptID string) ([]dto.UserResponse, int64, error) {
	departmentID := req.DepartmentID

	// director 自动过滤为本部门
	if callerRole == model.RoleDirector {
		departmentID = callerDeptID
	}

	users, total, err := s.repo.User.List(ctx, departmentID, req.Role, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, *s.toUserResponse(&u))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 非管理员只能修改自己，且不能修改 department_id
	if callerRole != model.RoleAdmin {
		if callerID != id {
			return nil, ErrNoPermission
		}
		if req.DepartmentID != nil {
			return nil, ErrNoPermission
		}
	}

	// 应用更新字段（仅更新非 nil 字段）
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		// 检查邮箱唯一性
		existing, err := s.repo.User.GetByEmail(ctx, *req.Email)
		if err == nil && existing.UserID != id {
			return nil, ErrEmailExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.DepartmentID != nil {
		// 验证部门存在
		if _, err := s.repo.Department.GetByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		user.DepartmentID = *req.DepartmentID
	}

	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 重新加载关联
	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toUserResponse(updated), nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error {
	if id == callerID {
		return ErrUserSelfRoleChange
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	user.Role = req.Role
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("分配角色失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// toUserResponse 将 model.User 转换为 dto.UserResponse
func (s *userService) toUserResponse(user *model.User) *dto.UserResponse {
	var dept *dto.DepartmentResponse
	if user.Department != nil {
		dept = &dto.DepartmentResponse{
			ID:   user.Department.DepartmentID,
			Name: user.Department.Name,
		}
	}
	return &dto.UserResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		Email:              user.Email,
		EmployeeNo:         user.EmployeeNo,
		Role:               user.Role,
		Department:         dept,
		MustChangePassword: user.MustChangePassword,
	}
}
