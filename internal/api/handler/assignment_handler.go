package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/service"
	"coverduty/backend/pkg/response"
)

// AssignmentHandler 授课安排模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// CreateAssignment 创建授课安排
// POST /api/v1/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}
	callerDeptID, ok := MustGetDepartmentID(c)
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignment, err := h.assignmentSvc.Create(c.Request.Context(), &req, callerID, callerRole, callerDeptID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, assignment)
}

// GetAssignment 获取授课安排详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignment, err := h.assignmentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// ListAssignments 授课安排列表
// GET /api/v1/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignments, total, err := h.assignmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OKPage(c, assignments, total, req.GetPage(), req.GetPageSize())
}

// ListMyAssignments 我的授课安排列表
// GET /api/v1/assignments/my
func (h *AssignmentHandler) ListMyAssignments(c *gin.Context) {
	instructorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignments, total, err := h.assignmentSvc.ListMine(c.Request.Context(), instructorID, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OKPage(c, assignments, total, req.GetPage(), req.GetPageSize())
}

// DeleteAssignment 删除授课安排
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}
	callerDeptID, ok := MustGetDepartmentID(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Delete(c.Request.Context(), c.Param("id"), callerID, callerRole, callerDeptID); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAssignmentError 统一处理授课安排模块业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 18001, "授课安排不存在")
	case errors.Is(err, service.ErrAssignmentDeptMismatch):
		response.Forbidden(c, 18002, "只能操作本部门的授课安排")
	case errors.Is(err, service.ErrShiftBadDate),
		errors.Is(err, service.ErrShiftBadTime),
		errors.Is(err, service.ErrShiftBadTimeRange):
		response.BadRequest(c, 18003, err.Error())
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, "部门不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 14001, "地点不存在")
	default:
		response.InternalError(c)
	}
}
