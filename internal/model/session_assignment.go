package model

import "time"

// SessionAssignment 节次授课安排表 — 对应 session_assignments
// 某位讲师对某个具体教学节次的既有承担，是替班申请的目标对象。
type SessionAssignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	Title        string    `gorm:"type:varchar(200);not null"                     json:"title"`
	SessionDate  time.Time `gorm:"type:date;not null"                             json:"session_date"`
	StartTime    string    `gorm:"type:time;not null"                             json:"start_time"`
	EndTime      string    `gorm:"type:time;not null"                             json:"end_time"`
	DepartmentID string    `gorm:"type:uuid;not null"                             json:"department_id"`
	InstructorID string    `gorm:"type:uuid;not null"                             json:"instructor_id"`
	LocationID   *string   `gorm:"type:uuid"                                      json:"location_id,omitempty"`
	BaseModel

	// 关联
	Instructor *User       `gorm:"foreignKey:InstructorID;references:UserID"       json:"instructor,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Location   *Location   `gorm:"foreignKey:LocationID;references:LocationID"     json:"location,omitempty"`
}

// TableName 指定表名
func (SessionAssignment) TableName() string { return "session_assignments" }
