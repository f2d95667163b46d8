package handler

import "coverduty/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Department   *DepartmentHandler
	Location     *LocationHandler
	Shift        *ShiftHandler
	Signup       *SignupHandler
	Assignment   *AssignmentHandler
	Substitute   *SubstituteHandler
	Notification *NotificationHandler
	Export       *ExportHandler
	SystemConfig *SystemConfigHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Department:   NewDepartmentHandler(svc.Department),
		Location:     NewLocationHandler(svc.Location),
		Shift:        NewShiftHandler(svc.Shift, svc.Signup),
		Signup:       NewSignupHandler(svc.Signup),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		Substitute:   NewSubstituteHandler(svc.Substitute),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
		SystemConfig: NewSystemConfigHandler(svc.SystemConfig),
	}
}
