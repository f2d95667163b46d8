package dto

// ── 替班申请模块 DTO ──

// CreateSubRequestRequest 创建替班申请请求
type CreateSubRequestRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required,uuid"`
	Reason       string `json:"reason"        binding:"required,oneof=sick personal conflict other"`
	Detail       string `json:"detail"        binding:"omitempty,max=500"`
}

// ReviewSubRequestRequest 审核替班申请请求
// approve 时可选指定 covered_by 直接指派替班人
type ReviewSubRequestRequest struct {
	Action    string  `json:"action"     binding:"required,oneof=approve deny"`
	Notes     string  `json:"notes"      binding:"omitempty,max=500"`
	CoveredBy *string `json:"covered_by" binding:"omitempty,uuid"`
}

// SubRequestListRequest 替班申请列表查询参数
type SubRequestListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved denied cancelled"`
}

// SubRequestResponse 替班申请信息响应
type SubRequestResponse struct {
	ID              string  `json:"id"`
	AssignmentID    string  `json:"assignment_id"`
	AssignmentTitle string  `json:"assignment_title,omitempty"`
	SessionDate     string  `json:"session_date,omitempty"`
	RequesterID     string  `json:"requester_id"`
	RequesterName   string  `json:"requester_name,omitempty"`
	Reason          string  `json:"reason"`
	Detail          string  `json:"detail,omitempty"`
	Status          string  `json:"status"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      string  `json:"reviewed_at,omitempty"`
	ReviewNotes     string  `json:"review_notes,omitempty"`
	CoveredBy       *string `json:"covered_by,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
