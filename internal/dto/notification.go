package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知信息响应
type NotificationResponse struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Link        string  `json:"link,omitempty"`
	IsRead      bool    `json:"is_read"`
	RelatedType *string `json:"related_type,omitempty"`
	RelatedID   *string `json:"related_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// UnreadCountResponse 未读数量响应
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// UpdatePreferenceRequest 更新通知偏好请求
type UpdatePreferenceRequest struct {
	SignupResult      *bool `json:"signup_result"`
	SubstituteReview  *bool `json:"substitute_review"`
	CoverageBroadcast *bool `json:"coverage_broadcast"`
	ShiftChange       *bool `json:"shift_change"`
}

// PreferenceResponse 通知偏好响应
type PreferenceResponse struct {
	SignupResult      bool `json:"signup_result"`
	SubstituteReview  bool `json:"substitute_review"`
	CoverageBroadcast bool `json:"coverage_broadcast"`
	ShiftChange       bool `json:"shift_change"`
}
