package repository

import (
	"context"

	"gorm.io/gorm"

	"coverduty/backend/internal/model"
)

// LocationRepository 值班地点数据访问接口
type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id string) (*model.Location, error)
	List(ctx context.Context, includeInactive bool) ([]model.Location, error)
	Update(ctx context.Context, loc *model.Location) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type locationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	if err := r.db.WithContext(ctx).Where("location_id = ?", id).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// List 默认只返回启用中的地点
func (r *locationRepo) List(ctx context.Context, includeInactive bool) ([]model.Location, error) {
	query := r.db.WithContext(ctx)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var locations []model.Location
	err := query.Order("name ASC").Find(&locations).Error
	return locations, err
}

func (r *locationRepo) Update(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

// Delete 软删除并记录操作人
func (r *locationRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Location{}).
		Where("location_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
