package middleware

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-clipper/internal/pkg/common"
)

// ErrCodeBodyTooLarge 請求體超過上限
const ErrCodeBodyTooLarge = "BODY_TOO_LARGE"

// BodySizeLimit 限制請求體大小的中間件
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxSize <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		// 先以 Content-Length 擋下明顯過大的請求
		if c.Request.ContentLength > maxSize {
			common.LogWarn("Request body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			abortBodyTooLarge(c, maxSize)
			return
		}

		// 沒有 Content-Length 的請求由 MaxBytesReader 在讀取時限制
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		c.Next()
	}
}

func abortBodyTooLarge(c *gin.Context, maxSize int64) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"code":       ErrCodeBodyTooLarge,
		"message":    "Request body too large",
		"max_size":   maxSize,
		"request_id": requestid.Get(c),
	})
}
