package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/repository"
)

// ── 部门模块业务错误 ──

var (
	ErrDepartmentNameExists = errors.New("部门名称已存在")
	ErrDepartmentHasMembers = errors.New("部门下仍有成员，不能删除")
)

// DepartmentService 部门业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.DepartmentDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	// 名称唯一性
	if _, err := s.repo.Department.GetByName(ctx, req.Name); err == nil {
		return nil, ErrDepartmentNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dept := &model.Department{
		Name:           req.Name,
		Description:    req.Description,
		IsActive:       true,
		VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
	}

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	return s.toDetailResponse(ctx, dept), nil
}

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toDetailResponse(ctx, dept), nil
}

func (s *departmentService) List(ctx context.Context, includeInactive bool) ([]dto.DepartmentDetailResponse, error) {
	depts, err := s.repo.Department.List(ctx, includeInactive)
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		result = append(result, *s.toDetailResponse(ctx, &depts[i]))
	}
	return result, nil
}

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != dept.Name {
		// 新名称唯一性
		if _, err := s.repo.Department.GetByName(ctx, *req.Name); err == nil {
			return nil, ErrDepartmentNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		dept.Name = *req.Name
	}
	if req.Description != nil {
		dept.Description = *req.Description
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("更新部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toDetailResponse(ctx, dept), nil
}

func (s *departmentService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Department.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Department.CountMembers(ctx, id)
	if err != nil {
		s.logger.Error("统计部门成员失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrDepartmentHasMembers
	}

	if err := s.repo.Department.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除部门失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// toDetailResponse 将 model.Department 转换为详细响应（含成员数）
func (s *departmentService) toDetailResponse(ctx context.Context, dept *model.Department) *dto.DepartmentDetailResponse {
	count, err := s.repo.Department.CountMembers(ctx, dept.DepartmentID)
	if err != nil {
		s.logger.Warn("统计部门成员失败", zap.String("id", dept.DepartmentID), zap.Error(err))
	}
	return &dto.DepartmentDetailResponse{
		ID:          dept.DepartmentID,
		Name:        dept.Name,
		Description: dept.Description,
		IsActive:    dept.IsActive,
		MemberCount: count,
		CreatedAt:   dept.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   dept.UpdatedAt.Format(time.RFC3339),
	}
}
