package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建讲师账号请求（director/admin 操作）
type CreateUserRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=50"`
	EmployeeNo   string `json:"employee_no"   binding:"required,max=20"`
	Email        string `json:"email"         binding:"required,email"`
	Password     string `json:"password"      binding:"required,min=8,max=20"`
	Role         string `json:"role"          binding:"omitempty,oneof=instructor director admin"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Role         string `form:"role"          binding:"omitempty,oneof=instructor director admin"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=50"`
	Email        *string `json:"email"         binding:"omitempty,email"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=instructor director admin"`
}
