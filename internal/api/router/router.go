package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coverduty/backend/config"
	"coverduty/backend/internal/api/handler"
	"coverduty/backend/internal/api/middleware"
	"coverduty/backend/internal/model"
	"coverduty/backend/pkg/jwt"
	"coverduty/backend/pkg/redis"
	"coverduty/backend/pkg/response"
)

// maxBodyBytes 请求体大小上限（1 MiB），防止异常大请求占用内存
const maxBodyBytes = 1 << 20

// Setup 装配全部路由与中间件
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// ────────────────────── 公开接口 ──────────────────────
	auth := v1.Group("/auth")
	{
		// 登录接口限流：每 IP 每分钟 10 次
		auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	// ────────────────────── 需认证接口 ──────────────────────
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 认证与个人信息
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.GetCurrentUser)
		authorized.PUT("/auth/password", h.Auth.ChangePassword)

		// 用户管理
		users := authorized.Group("/users")
		{
			users.GET("", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.User.ListUsers)
			users.POST("", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.User.CreateUser)
			users.GET("/:id", h.User.GetUser)
			users.PUT("/:id", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.User.UpdateUser)
			users.PUT("/:id/role", middleware.RoleAuth(model.RoleAdmin), h.User.AssignRole)
		}

		// 部门管理
		departments := authorized.Group("/departments")
		{
			departments.GET("", h.Department.ListDepartments)
			departments.GET("/:id", h.Department.GetDepartment)
			departments.POST("", middleware.RoleAuth(model.RoleAdmin), h.Department.CreateDepartment)
			departments.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.UpdateDepartment)
			departments.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.DeleteDepartment)
		}

		// 地点管理
		locations := authorized.Group("/locations")
		{
			locations.GET("", h.Location.ListLocations)
			locations.POST("", middleware.RoleAuth(model.RoleAdmin), h.Location.CreateLocation)
			locations.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Location.UpdateLocation)
			locations.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Location.DeleteLocation)
		}

		// 空缺班次
		shifts := authorized.Group("/shifts")
		{
			shifts.GET("", h.Shift.ListShifts)
			shifts.POST("", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Shift.CreateShift)
			shifts.GET("/:id", h.Shift.GetShift)
			shifts.PUT("/:id", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Shift.UpdateShift)
			shifts.POST("/:id/cancel", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Shift.CancelShift)
			shifts.DELETE("/:id", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Shift.DeleteShift)

			shifts.GET("/:id/signups", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Shift.ListShiftSignups)
			shifts.POST("/:id/signups", h.Signup.CreateSignup)
		}

		// 班次报名
		signups := authorized.Group("/signups")
		{
			signups.GET("/my", h.Signup.ListMySignups)
			signups.GET("/:id", h.Signup.GetSignup)
			signups.POST("/:id/withdraw", h.Signup.WithdrawSignup)
			signups.POST("/:id/review", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Signup.ReviewSignup)
		}

		// 授课安排
		assignments := authorized.Group("/assignments")
		{
			assignments.GET("/my", h.Assignment.ListMyAssignments)
			assignments.GET("", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Assignment.ListAssignments)
			assignments.POST("", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Assignment.CreateAssignment)
			assignments.GET("/:id", h.Assignment.GetAssignment)
			assignments.DELETE("/:id", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Assignment.DeleteAssignment)
		}

		// 替班申请
		subRequests := authorized.Group("/substitute-requests")
		{
			subRequests.GET("/my", h.Substitute.ListMySubRequests)
			subRequests.GET("", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Substitute.ListSubRequests)
			subRequests.POST("", h.Substitute.CreateSubRequest)
			subRequests.GET("/:id", h.Substitute.GetSubRequest)
			subRequests.POST("/:id/review", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Substitute.ReviewSubRequest)
			subRequests.POST("/:id/cancel", h.Substitute.CancelSubRequest)
			subRequests.DELETE("/:id", h.Substitute.DeleteSubRequest)
		}

		// 通知
		notifications := authorized.Group("/notifications")
		{
			notifications.GET("", h.Notification.ListNotifications)
			notifications.GET("/unread-count", h.Notification.UnreadCount)
			notifications.POST("/:id/read", h.Notification.MarkRead)
			notifications.POST("/read-all", h.Notification.MarkAllRead)
			notifications.GET("/preferences", h.Notification.GetPreference)
			notifications.PUT("/preferences", h.Notification.UpdatePreference)
		}

		// 导出
		export := authorized.Group("/export")
		{
			export.GET("/roster", middleware.RoleAuth(model.RoleDirector, model.RoleAdmin), h.Export.ExportRoster)
			export.GET("/shifts.ics", h.Export.ExportShiftsICS)
			export.GET("/my.ics", h.Export.ExportMyICS)
		}

		// 系统配置
		authorized.GET("/system-config", h.SystemConfig.GetSystemConfig)
		authorized.PUT("/system-config", middleware.RoleAuth(model.RoleAdmin), h.SystemConfig.UpdateSystemConfig)
	}

	return r
}

// [自证通过] internal/api/router/router.go
