package model

// ── 通知类别 ──
const (
	NotifyCategorySignupResult      = "signup_result"      // 报名被确认/拒绝
	NotifyCategorySubstituteReview  = "substitute_review"  // 替班申请审核结果
	NotifyCategoryCoverageBroadcast = "coverage_broadcast" // 需要有人顶班的广播
	NotifyCategoryShiftChange       = "shift_change"       // 班次变更/取消
)

// ── 关联对象类型 ──
const (
	RelatedTypeOpenShift         = "open_shift"
	RelatedTypeShiftSignup       = "shift_signup"
	RelatedTypeSubstituteRequest = "substitute_request"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Category       string  `gorm:"type:varchar(50);not null"                      json:"category"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	Link           string  `gorm:"type:varchar(500)"                              json:"link,omitempty"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(30)"                               json:"related_type,omitempty"` // open_shift | shift_signup | substitute_request
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// NotificationPreference 通知偏好表 — 对应 notification_preferences（与 users 1:1）
type NotificationPreference struct {
	UserID            string `gorm:"type:uuid;primaryKey"  json:"user_id"`
	SignupResult      bool   `gorm:"not null;default:true" json:"signup_result"`
	SubstituteReview  bool   `gorm:"not null;default:true" json:"substitute_review"`
	CoverageBroadcast bool   `gorm:"not null;default:true" json:"coverage_broadcast"`
	ShiftChange       bool   `gorm:"not null;default:true" json:"shift_change"`
	BaseModel
}

// TableName 指定表名
func (NotificationPreference) TableName() string { return "notification_preferences" }

// Allows 指定类别的通知是否被用户偏好允许
func (p *NotificationPreference) Allows(category string) bool {
	switch category {
	case NotifyCategorySignupResult:
		return p.SignupResult
	case NotifyCategorySubstituteReview:
		return p.SubstituteReview
	case NotifyCategoryCoverageBroadcast:
		return p.CoverageBroadcast
	case NotifyCategoryShiftChange:
		return p.ShiftChange
	default:
		return true
	}
}
