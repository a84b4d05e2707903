package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/treehole/pkg/response"
)

// SubmitRateLimit 按客户端 IP 限制提交频率，遏制灌水。
// 核心没有提交去重，靠限流 + 前端禁用重复提交兜底。
func SubmitRateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(r, burst)
			limiters[ip] = l
		}
		return l
	}
	return func(c *gin.Context) {
		if !get(c.ClientIP()).Allow() {
			c.JSON(429, response.Response{Code: 429, Message: "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
