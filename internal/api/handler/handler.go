package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/treehole/config"
	"github.com/d60-Lab/treehole/internal/service"
	"github.com/d60-Lab/treehole/internal/verifier"
	"github.com/d60-Lab/treehole/pkg/logger"
	"github.com/d60-Lab/treehole/pkg/response"
)

// Handler 聚合各服务的 HTTP 入口
type Handler struct {
	postService service.PostService
	feedService service.FeedService
	modService  service.ModerationService
	verifier    *verifier.Verifier
	authCfg     config.AuthConfig
}

func New(
	postService service.PostService,
	feedService service.FeedService,
	modService service.ModerationService,
	v *verifier.Verifier,
	authCfg config.AuthConfig,
) *Handler {
	return &Handler{
		postService: postService,
		feedService: feedService,
		modService:  modService,
		verifier:    v,
		authCfg:     authCfg,
	}
}

// writeServiceError 把服务层错误映射为响应码：
// 451 验证失败 / 400 参数或游标 / 404 不存在 / 409 状态冲突 / 其余 500
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVerification):
		response.VerificationFailed(c, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidCursor):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, service.ErrPostNotFound.Error())
	case errors.Is(err, service.ErrAlreadyAccepted), errors.Is(err, service.ErrInvalidState):
		response.Conflict(c, err.Error())
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, err)
	}
}
