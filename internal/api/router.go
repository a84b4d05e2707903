package api

import (
	"regexp"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/treehole/config"
	_ "github.com/d60-Lab/treehole/docs"
	"github.com/d60-Lab/treehole/internal/api/handler"
	"github.com/d60-Lab/treehole/internal/api/middleware"
)

// tagPattern 标签只允许中英文、数字、下划线
var tagPattern = regexp.MustCompile(`^[\p{Han}\p{L}\p{N}_]{1,64}$`)

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("posttag", func(fl validator.FieldLevel) bool {
			return tagPattern.MatchString(fl.Field().String())
		})
	}
}

// SetupRouter 装配路由
func SetupRouter(h *handler.Handler, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	registerValidators()

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		gzip.Gzip(gzip.DefaultCompression),
		otelgin.Middleware(cfg.Observability.ServiceName),
	)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })

	v1 := r.Group("/api/v1")
	{
		// 每 IP 限流只作用于提交
		v1.POST("/posts", middleware.SubmitRateLimit(rate.Limit(0.2), 5), h.Submit)
		v1.GET("/posts", h.Feed)
		v1.GET("/posts/:number", h.GetByNumber)

		// 按令牌的自助管理单独成组，避免与 /posts/:number 路由冲突
		v1.GET("/manage/:hash", h.GetByHash)
		v1.DELETE("/manage/:hash", h.DeleteByHash)

		v1.GET("/verify/challenge", h.Challenge)
		v1.POST("/auth/login", h.Login)

		mod := v1.Group("/moderation", middleware.ModeratorAuth(cfg.Auth.JWTSecret))
		{
			mod.GET("/posts", h.ListPending)
			mod.POST("/posts/:id/accept", h.Accept)
			mod.POST("/posts/:id/reject", h.Reject)
			mod.POST("/posts/:id/fblink", h.SetFBLink)
			mod.DELETE("/posts/:id", h.Remove)
		}
	}

	return r
}
