package dto

// ── 授课安排模块 DTO ──

// CreateAssignmentRequest 创建授课安排请求
type CreateAssignmentRequest struct {
	Title        string  `json:"title"         binding:"required,min=2,max=200"`
	SessionDate  string  `json:"session_date"  binding:"required"` // "2026-09-15"
	StartTime    string  `json:"start_time"    binding:"required"` // "08:00"
	EndTime      string  `json:"end_time"      binding:"required"`
	DepartmentID string  `json:"department_id" binding:"required,uuid"`
	InstructorID string  `json:"instructor_id" binding:"required,uuid"`
	LocationID   *string `json:"location_id"   binding:"omitempty,uuid"`
}

// AssignmentListRequest 授课安排列表查询参数
type AssignmentListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	InstructorID string `form:"instructor_id" binding:"omitempty,uuid"`
	DateFrom     string `form:"date_from"`
	DateTo       string `form:"date_to"`
}

// AssignmentResponse 授课安排信息响应
type AssignmentResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	SessionDate    string  `json:"session_date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	DepartmentID   string  `json:"department_id"`
	InstructorID   string  `json:"instructor_id"`
	InstructorName string  `json:"instructor_name,omitempty"`
	LocationID     *string `json:"location_id,omitempty"`
	LocationName   string  `json:"location_name,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
