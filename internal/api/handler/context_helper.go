package handler

import (
	"github.com/gin-gonic/gin"

	"coverduty/backend/pkg/jwt"
	"coverduty/backend/pkg/response"
)

// 认证中间件注入上下文的键名
const (
	ctxKeyUserID       = "user_id"
	ctxKeyRole         = "role"
	ctxKeyDepartmentID = "department_id"
	ctxKeyClaims       = "claims"
)

func mustGetString(c *gin.Context, key string, allowEmpty bool) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || (!allowEmpty && s == "") {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetUserID 提取当前用户 ID；缺失时写 401，调用方应直接 return
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxKeyUserID, false)
}

// MustGetRole 提取当前用户角色
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxKeyRole, false)
}

// MustGetDepartmentID 提取当前用户部门；admin 可能为空串
func MustGetDepartmentID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxKeyDepartmentID, true)
}

// MustGetClaims 提取完整 JWT 声明
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxKeyClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
