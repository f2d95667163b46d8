package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User              UserRepository
	Department        DepartmentRepository
	Location          LocationRepository
	OpenShift         OpenShiftRepository
	ShiftSignup       ShiftSignupRepository
	Assignment        AssignmentRepository
	SubstituteRequest SubstituteRequestRepository
	Notification      NotificationRepository
	SystemConfig      SystemConfigRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:              NewUserRepo(db),
		Department:        NewDepartmentRepo(db),
		Location:          NewLocationRepo(db),
		OpenShift:         NewOpenShiftRepo(db),
		ShiftSignup:       NewShiftSignupRepo(db),
		Assignment:        NewAssignmentRepo(db),
		SubstituteRequest: NewSubstituteRequestRepo(db),
		Notification:      NewNotificationRepo(db),
		SystemConfig:      NewSystemConfigRepo(db),
	}
}
