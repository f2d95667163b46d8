package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"coverduty/backend/internal/model"
)

// AssignmentRepository 节次授课安排数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.SessionAssignment) error
	GetByID(ctx context.Context, id string) (*model.SessionAssignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]model.SessionAssignment, int64, error)
	Update(ctx context.Context, assignment *model.SessionAssignment) error
	Delete(ctx context.Context, id string, deletedBy string) error

	// IsAssignedTo 安排是否归属指定讲师
	IsAssignedTo(ctx context.Context, assignmentID, instructorID string) (bool, error)
}

// AssignmentFilter 安排列表过滤条件
type AssignmentFilter struct {
	DepartmentID string
	InstructorID string
	DateFrom     *time.Time
	DateTo       *time.Time
	Offset       int
	Limit        int
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.SessionAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.SessionAssignment, error) {
	var assignment model.SessionAssignment
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Department").
		Preload("Location").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter) ([]model.SessionAssignment, int64, error) {
	var assignments []model.SessionAssignment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SessionAssignment{})
	if filter.DepartmentID != "" {
		db = db.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.InstructorID != "" {
		db = db.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.DateFrom != nil {
		db = db.Where("session_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("session_date <= ?", filter.DateTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Instructor").
		Preload("Location").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("session_date ASC, start_time ASC").
		Find(&assignments).Error
	return assignments, total, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.SessionAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.SessionAssignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *assignmentRepo) IsAssignedTo(ctx context.Context, assignmentID, instructorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SessionAssignment{}).
		Where("assignment_id = ? AND instructor_id = ?", assignmentID, instructorID).
		Count(&count).Error
	return count > 0, err
}
