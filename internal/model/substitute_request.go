package model

import "time"

// ── 替班申请状态 ──
// cancelled 是申请人主动撤销的终态，与审核人驱动的 approved/denied 可区分
const (
	SubRequestStatusPending   = "pending"
	SubRequestStatusApproved  = "approved"
	SubRequestStatusDenied    = "denied"
	SubRequestStatusCancelled = "cancelled"
)

// ── 替班原因 ──
const (
	SubReasonSick     = "sick"
	SubReasonPersonal = "personal"
	SubReasonConflict = "conflict"
	SubReasonOther    = "other"
)

// SubstituteRequest 替班申请表 — 对应 substitute_requests
// 已承担节次的讲师申请被替换；同一节次同一时刻最多一条 pending 申请
// （数据库部分唯一索引 uq_substitute_requests_pending 保证）。
type SubstituteRequest struct {
	RequestID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	AssignmentID string     `gorm:"type:uuid;not null"                             json:"assignment_id"`
	RequesterID  string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	Reason       string     `gorm:"type:varchar(20);not null"                      json:"reason"` // sick | personal | conflict | other
	Detail       string     `gorm:"type:varchar(500)"                              json:"detail,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | denied | cancelled
	ReviewedBy   *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes  string     `gorm:"type:varchar(500)"                              json:"review_notes,omitempty"`
	CoveredBy    *string    `gorm:"type:uuid"                                      json:"covered_by,omitempty"`
	VersionedModel

	// 关联
	Assignment *SessionAssignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
	Requester  *User              `gorm:"foreignKey:RequesterID;references:UserID"        json:"requester,omitempty"`
	Substitute *User              `gorm:"foreignKey:CoveredBy;references:UserID"          json:"substitute,omitempty"`
}

// TableName 指定表名
func (SubstituteRequest) TableName() string { return "substitute_requests" }

// [自证通过] internal/model/substitute_request.go
