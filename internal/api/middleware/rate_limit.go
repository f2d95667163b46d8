package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coverduty/backend/pkg/redis"
	"coverduty/backend/pkg/response"
)

// RateLimit 基于 Redis 固定窗口按 IP+路由 限流
// rdb 为 nil 或 Redis 出错时降级放行，限流不拦业务
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil || allowed {
			c.Next()
			return
		}

		response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
		c.Abort()
	}
}
