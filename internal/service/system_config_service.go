package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/repository"
)

// SystemConfigService 系统配置业务接口
type SystemConfigService interface {
	Get(ctx context.Context) (*dto.SystemConfigResponse, error)
	Update(ctx context.Context, req *dto.UpdateSystemConfigRequest, callerID string) (*dto.SystemConfigResponse, error)
}

type systemConfigService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSystemConfigService 创建 SystemConfigService 实例
func NewSystemConfigService(repo *repository.Repository, logger *zap.Logger) SystemConfigService {
	return &systemConfigService{repo: repo, logger: logger}
}

func (s *systemConfigService) Get(ctx context.Context) (*dto.SystemConfigResponse, error) {
	cfg, err := s.repo.SystemConfig.Get(ctx)
	if err != nil {
		s.logger.Error("查询系统配置失败", zap.Error(err))
		return nil, err
	}

	return &dto.SystemConfigResponse{
		SignupDeadlineHours: cfg.SignupDeadlineHours,
		BroadcastEnabled:    cfg.BroadcastEnabled,
		DefaultLocation:     cfg.DefaultLocation,
		UpdatedAt:           cfg.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (s *systemConfigService) Update(ctx context.Context, req *dto.UpdateSystemConfigRequest, callerID string) (*dto.SystemConfigResponse, error) {
	cfg, err := s.repo.SystemConfig.Get(ctx)
	if err != nil {
		s.logger.Error("查询系统配置失败", zap.Error(err))
		return nil, err
	}

	if req.SignupDeadlineHours != nil {
		cfg.SignupDeadlineHours = *req.SignupDeadlineHours
	}
	if req.BroadcastEnabled != nil {
		cfg.BroadcastEnabled = *req.BroadcastEnabled
	}
	if req.DefaultLocation != nil {
		cfg.DefaultLocation = *req.DefaultLocation
	}
	cfg.UpdatedBy = &callerID

	if err := s.repo.SystemConfig.Update(ctx, cfg); err != nil {
		s.logger.Error("更新系统配置失败", zap.Error(err))
		return nil, err
	}

	return &dto.SystemConfigResponse{
		SignupDeadlineHours: cfg.SignupDeadlineHours,
		BroadcastEnabled:    cfg.BroadcastEnabled,
		DefaultLocation:     cfg.DefaultLocation,
		UpdatedAt:           cfg.UpdatedAt.Format(time.RFC3339),
	}, nil
}
