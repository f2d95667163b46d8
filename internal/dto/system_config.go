package dto

// ── 系统配置模块 DTO ──

// UpdateSystemConfigRequest 更新系统配置请求
type UpdateSystemConfigRequest struct {
	SignupDeadlineHours *int    `json:"signup_deadline_hours" binding:"omitempty,min=0,max=168"`
	BroadcastEnabled    *bool   `json:"broadcast_enabled"`
	DefaultLocation     *string `json:"default_location"      binding:"omitempty,max=200"`
}

// SystemConfigResponse 系统配置响应
type SystemConfigResponse struct {
	SignupDeadlineHours int    `json:"signup_deadline_hours"`
	BroadcastEnabled    bool   `json:"broadcast_enabled"`
	DefaultLocation     string `json:"default_location"`
	UpdatedAt           string `json:"updated_at"`
}
