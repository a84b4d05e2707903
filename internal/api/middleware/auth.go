package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/treehole/pkg/response"
)

// CtxModerator 上下文中的审核员标识 key
const CtxModerator = "moderator"

// ModeratorAuth 审核接口的能力校验：必须携带有效的审核员 JWT。
// 审核员身份显式建模为令牌，而不是依赖前端隐藏入口。
func ModeratorAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || tokenStr == "" {
			response.Unauthorized(c, "missing moderator token")
			c.Abort()
			return
		}

		claims := jwt.RegisteredClaims{}
		tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid || claims.Subject == "" {
			response.Unauthorized(c, "invalid moderator token")
			c.Abort()
			return
		}

		c.Set(CtxModerator, claims.Subject)
		c.Next()
	}
}
