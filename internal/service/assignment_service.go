package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/repository"
)

var ErrAssignmentDeptMismatch = errors.New("只能操作本部门的授课安排")

// AssignmentService 授课安排业务接口
type AssignmentService interface {
	Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID, callerRole, callerDeptID string) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error)
	ListMine(ctx context.Context, instructorID string, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error)
	Delete(ctx context.Context, id string, callerID, callerRole, callerDeptID string) error
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger}
}

func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID, callerRole, callerDeptID string) (*dto.AssignmentResponse, error) {
	if callerRole == model.RoleDirector && req.DepartmentID != callerDeptID {
		return nil, ErrAssignmentDeptMismatch
	}

	sessionDate, err := parseDate(req.SessionDate)
	if err != nil {
		return nil, ErrShiftBadDate
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	if _, err := s.repo.User.GetByID(ctx, req.InstructorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if req.LocationID != nil {
		if _, err := s.repo.Location.GetByID(ctx, *req.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrLocationNotFound
			}
			return nil, err
		}
	}

	assignment := &model.SessionAssignment{
		Title:        req.Title,
		SessionDate:  sessionDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		DepartmentID: req.DepartmentID,
		InstructorID: req.InstructorID,
		LocationID:   req.LocationID,
		BaseModel:    model.BaseModel{CreatedBy: &callerID},
	}

	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("创建授课安排失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, assignment.AssignmentID)
}

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询授课安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error) {
	filter := repository.AssignmentFilter{
		DepartmentID: req.DepartmentID,
		InstructorID: req.InstructorID,
		Offset:       req.GetOffset(),
		Limit:        req.GetPageSize(),
	}
	if req.DateFrom != "" {
		t, err := parseDate(req.DateFrom)
		if err != nil {
			return nil, 0, ErrShiftBadDate
		}
		filter.DateFrom = &t
	}
	if req.DateTo != "" {
		t, err := parseDate(req.DateTo)
		if err != nil {
			return nil, 0, ErrShiftBadDate
		}
		filter.DateTo = &t
	}

	assignments, total, err := s.repo.Assignment.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出授课安排失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *toAssignmentResponse(&assignments[i]))
	}
	return result, total, nil
}

func (s *assignmentService) ListMine(ctx context.Context, instructorID string, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error) {
	req.InstructorID = instructorID
	return s.List(ctx, req)
}

func (s *assignmentService) Delete(ctx context.Context, id string, callerID, callerRole, callerDeptID string) error {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("查询授课安排失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if callerRole == model.RoleDirector && assignment.DepartmentID != callerDeptID {
		return ErrAssignmentDeptMismatch
	}

	if err := s.repo.Assignment.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除授课安排失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toAssignmentResponse(assignment *model.SessionAssignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:           assignment.AssignmentID,
		Title:        assignment.Title,
		SessionDate:  assignment.SessionDate.Format("2006-01-02"),
		StartTime:    assignment.StartTime,
		EndTime:      assignment.EndTime,
		DepartmentID: assignment.DepartmentID,
		InstructorID: assignment.InstructorID,
		LocationID:   assignment.LocationID,
		CreatedAt:    assignment.CreatedAt.Format(time.RFC3339),
	}
	if assignment.Instructor != nil {
		resp.InstructorName = assignment.Instructor.Name
	}
	if assignment.Location != nil {
		resp.LocationName = assignment.Location.Name
	}
	return resp
}
