package dto

// ── 班次报名模块 DTO ──

// CreateSignupRequest 报名请求
// start_time/end_time 允许只认领班次内的一段时间（部分报名）
type CreateSignupRequest struct {
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Notes     string  `json:"notes" binding:"omitempty,max=500"`
}

// ReviewSignupRequest 审核报名请求
type ReviewSignupRequest struct {
	Action string `json:"action" binding:"required,oneof=confirm decline"`
	Reason string `json:"reason" binding:"omitempty,max=500"` // decline 时的拒绝原因
}

// SignupListRequest 报名列表查询参数
type SignupListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed declined withdrawn"`
}

// SignupResponse 报名信息响应
type SignupResponse struct {
	ID             string  `json:"id"`
	ShiftID        string  `json:"shift_id"`
	ShiftTitle     string  `json:"shift_title,omitempty"`
	InstructorID   string  `json:"instructor_id"`
	InstructorName string  `json:"instructor_name,omitempty"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	Status         string  `json:"status"`
	ConfirmedBy    *string `json:"confirmed_by,omitempty"`
	ConfirmedAt    string  `json:"confirmed_at,omitempty"`
	DeclineReason  string  `json:"decline_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
