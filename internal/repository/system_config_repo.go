package repository

import (
	"context"

	"gorm.io/gorm"

	"coverduty/backend/internal/model"
)

// SystemConfigRepository 全局配置单行表的读写接口
type SystemConfigRepository interface {
	Get(ctx context.Context) (*model.SystemConfig, error)
	Update(ctx context.Context, cfg *model.SystemConfig) error
}

type systemConfigRepo struct {
	db *gorm.DB
}

func NewSystemConfigRepo(db *gorm.DB) SystemConfigRepository {
	return &systemConfigRepo{db: db}
}

// Get 读取配置行，表由迁移预置且始终只有一行
func (r *systemConfigRepo) Get(ctx context.Context) (*model.SystemConfig, error) {
	var cfg model.SystemConfig
	if err := r.db.WithContext(ctx).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *systemConfigRepo) Update(ctx context.Context, cfg *model.SystemConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
