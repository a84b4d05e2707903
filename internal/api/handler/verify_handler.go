package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/treehole/pkg/response"
)

// Challenge 签发人机验证挑战
// @Summary 获取人机验证挑战
// @Tags 验证
// @Produce json
// @Success 200 {object} response.Response{data=verifier.Challenge}
// @Router /api/v1/verify/challenge [get]
func (h *Handler) Challenge(c *gin.Context) {
	ch, err := h.verifier.Issue(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, ch)
}
