package dto

// ── 空缺班次模块 DTO ──

// CreateOpenShiftRequest 创建空缺班次请求
type CreateOpenShiftRequest struct {
	Title          string  `json:"title"           binding:"required,min=2,max=200"`
	ShiftDate      string  `json:"shift_date"      binding:"required"` // "2026-09-15"
	StartTime      string  `json:"start_time"      binding:"required"` // "08:00"
	EndTime        string  `json:"end_time"        binding:"required"`
	DepartmentID   string  `json:"department_id"   binding:"required,uuid"`
	LocationID     *string `json:"location_id"     binding:"omitempty,uuid"`
	Notes          string  `json:"notes"           binding:"omitempty,max=500"`
	MinInstructors int     `json:"min_instructors" binding:"omitempty,min=1"`
	MaxInstructors *int    `json:"max_instructors" binding:"omitempty,min=1"` // 不传 = 不限人数
}

// UpdateOpenShiftRequest 更新空缺班次请求
type UpdateOpenShiftRequest struct {
	Title          *string `json:"title"           binding:"omitempty,min=2,max=200"`
	ShiftDate      *string `json:"shift_date"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	LocationID     *string `json:"location_id"     binding:"omitempty,uuid"`
	Notes          *string `json:"notes"           binding:"omitempty,max=500"`
	MinInstructors *int    `json:"min_instructors" binding:"omitempty,min=1"`
	MaxInstructors *int    `json:"max_instructors" binding:"omitempty,min=1"`
}

// OpenShiftListRequest 班次列表查询参数
type OpenShiftListRequest struct {
	PaginationRequest
	DepartmentID     string `form:"department_id"     binding:"omitempty,uuid"`
	DateFrom         string `form:"date_from"`
	DateTo           string `form:"date_to"`
	IncludeCancelled bool   `form:"include_cancelled"`
}

// OpenShiftResponse 班次信息响应
type OpenShiftResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	ShiftDate      string  `json:"shift_date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	DepartmentID   string  `json:"department_id"`
	DepartmentName string  `json:"department_name,omitempty"`
	LocationID     *string `json:"location_id,omitempty"`
	LocationName   string  `json:"location_name,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	MinInstructors int     `json:"min_instructors"`
	MaxInstructors *int    `json:"max_instructors,omitempty"` // nil = 不限人数
	ConfirmedCount int64   `json:"confirmed_count"`
	HasCapacity    bool    `json:"has_capacity"`
	IsCancelled    bool    `json:"is_cancelled"`
	CancelledAt    string  `json:"cancelled_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// CancelOpenShiftResponse 取消班次响应
// AffectedInstructors 为取消时仍持有活跃报名的讲师，调用方据此跟进
type CancelOpenShiftResponse struct {
	ID                  string   `json:"id"`
	IsCancelled         bool     `json:"is_cancelled"`
	AffectedInstructors []string `json:"affected_instructors"`
}
