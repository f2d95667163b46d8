package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/service"
	"coverduty/backend/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// CreateDepartment 创建部门
// POST /api/v1/departments
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDeptError(c, err)
		return
	}

	response.Created(c, dept)
}

// GetDepartment 获取部门详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	dept, err := h.deptSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleDeptError(c, err)
		return
	}

	response.OK(c, dept)
}

// ListDepartments 部门列表
// GET /api/v1/departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	var req dto.DepartmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	depts, err := h.deptSvc.List(c.Request.Context(), req.IncludeInactive)
	if err != nil {
		h.handleDeptError(c, err)
		return
	}

	response.OK(c, depts)
}

// UpdateDepartment 更新部门
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleDeptError(c, err)
		return
	}

	response.OK(c, dept)
}

// DeleteDepartment 删除部门
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.deptSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleDeptError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleDeptError 统一处理部门模块业务错误
func (h *DepartmentHandler) handleDeptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, "部门不存在")
	case errors.Is(err, service.ErrDepartmentNameExists):
		response.Conflict(c, 13002, "部门名称已存在")
	case errors.Is(err, service.ErrDepartmentHasMembers):
		response.Conflict(c, 13003, "部门下仍有成员，不能删除")
	default:
		response.InternalError(c)
	}
}
