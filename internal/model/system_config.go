package model

// SystemConfig 系统配置表 — 对应 system_config（单行强类型）
type SystemConfig struct {
	Singleton           bool   `gorm:"primaryKey;default:true"                         json:"-"`
	SignupDeadlineHours int    `gorm:"not null;default:0"                              json:"signup_deadline_hours"`
	BroadcastEnabled    bool   `gorm:"not null;default:true"                           json:"broadcast_enabled"`
	DefaultLocation     string `gorm:"type:varchar(200);not null;default:'教学楼办公室'" json:"default_location"`
	BaseModel
}

// TableName 指定表名
func (SystemConfig) TableName() string { return "system_config" }
