package middleware

import (
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/treehole/pkg/logger"
	"github.com/d60-Lab/treehole/pkg/response"
)

// Recovery 捕获 panic：上报 sentry，返回 500，绝不让请求打穿进程
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Recover(r)
				logger.Error("panic recovered",
					zap.String("path", c.FullPath()),
					zap.Any("panic", r))
				response.InternalError(c, errors.New(fmt.Sprint(r)))
				c.Abort()
			}
		}()
		c.Next()
	}
}
