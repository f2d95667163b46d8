package repository

import (
	"context"

	"gorm.io/gorm"

	"coverduty/backend/internal/model"
)

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	GetByName(ctx context.Context, name string) (*model.Department, error)
	List(ctx context.Context, includeInactive bool) ([]model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountMembers(ctx context.Context, departmentID string) (int64, error)
}

type departmentRepo struct {
	db *gorm.DB
}

func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) getOne(ctx context.Context, cond string, arg interface{}) (*model.Department, error) {
	var dept model.Department
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	return r.getOne(ctx, "department_id = ?", id)
}

// GetByName 用于创建前的重名检查
func (r *departmentRepo) GetByName(ctx context.Context, name string) (*model.Department, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *departmentRepo) List(ctx context.Context, includeInactive bool) ([]model.Department, error) {
	query := r.db.WithContext(ctx)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var depts []model.Department
	err := query.Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

// Delete 软删除并记录操作人
func (r *departmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("department_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CountMembers 部门在职人数，删除部门前校验用
func (r *departmentRepo) CountMembers(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("department_id = ? AND deleted_at IS NULL", departmentID).
		Count(&count).Error
	return count, err
}
