package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coverduty/backend/pkg/response"
)

// BodyLimit 限制请求体大小，超限统一返回 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() {
			return
		}
		// MaxBytesReader 的错误会被绑定层收进 c.Errors
		for _, ginErr := range c.Errors {
			if ginErr.Err != nil && ginErr.Err.Error() == "http: request body too large" {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
