package service

import (
	"go.uber.org/zap"

	"coverduty/backend/config"
	"coverduty/backend/internal/repository"
	"coverduty/backend/pkg/jwt"
	"coverduty/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Department   DepartmentService
	Location     LocationService
	Shift        ShiftService
	Signup       SignupService
	Assignment   AssignmentService
	Substitute   SubstituteService
	Notification NotificationService
	Export       ExportService
	SystemConfig SystemConfigService
}

// NewService 创建 Service 聚合
// rdb 允许为 nil（Redis 不可用时降级运行，Token 黑名单功能关闭）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Department:   NewDepartmentService(repo, logger),
		Location:     NewLocationService(repo, logger),
		Shift:        NewShiftService(cfg, repo, notification, logger),
		Signup:       NewSignupService(cfg, repo, notification, logger),
		Assignment:   NewAssignmentService(repo, logger),
		Substitute:   NewSubstituteService(repo, notification, logger),
		Notification: notification,
		Export:       NewExportService(cfg, repo, logger),
		SystemConfig: NewSystemConfigService(repo, logger),
	}
}
