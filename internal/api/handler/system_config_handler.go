package handler

import (
	"github.com/gin-gonic/gin"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/service"
	"coverduty/backend/pkg/response"
)

// SystemConfigHandler 系统配置模块 HTTP 处理器
type SystemConfigHandler struct {
	configSvc service.SystemConfigService
}

// NewSystemConfigHandler 创建 SystemConfigHandler
func NewSystemConfigHandler(configSvc service.SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configSvc: configSvc}
}

// GetSystemConfig 获取系统配置
// GET /api/v1/system-config
func (h *SystemConfigHandler) GetSystemConfig(c *gin.Context) {
	cfg, err := h.configSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, cfg)
}

// UpdateSystemConfig 更新系统配置（仅管理员）
// PUT /api/v1/system-config
func (h *SystemConfigHandler) UpdateSystemConfig(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSystemConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	cfg, err := h.configSvc.Update(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, cfg)
}
