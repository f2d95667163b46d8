package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/service"
	"coverduty/backend/pkg/response"
)

// LocationHandler 地点模块 HTTP 处理器
type LocationHandler struct {
	locationSvc service.LocationService
}

// NewLocationHandler 创建 LocationHandler
func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// CreateLocation 创建地点
// POST /api/v1/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	loc, err := h.locationSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.Created(c, loc)
}

// ListLocations 地点列表
// GET /api/v1/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	var req dto.LocationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	locations, err := h.locationSvc.List(c.Request.Context(), req.IncludeInactive)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, locations)
}

// UpdateLocation 更新地点
// PUT /api/v1/locations/:id
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	loc, err := h.locationSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, loc)
}

// DeleteLocation 删除地点
// DELETE /api/v1/locations/:id
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.locationSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleLocationError 统一处理地点模块业务错误
func (h *LocationHandler) handleLocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 14001, "地点不存在")
	default:
		response.InternalError(c)
	}
}
