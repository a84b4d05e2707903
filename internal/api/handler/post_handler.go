package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/treehole/internal/service"
	"github.com/d60-Lab/treehole/pkg/response"
)

type submitRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content" binding:"required"`
	Tag         string `json:"tag" binding:"required,posttag"`
	ChallengeID string `json:"challengeId" binding:"required"`
	Answer      string `json:"answer" binding:"required"`
}

type submitResponse struct {
	ID        string `json:"id"`
	Hash      string `json:"hash"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	Warning   string `json:"warning"`
}

// hashWarning 创建时一次性提示：令牌即唯一凭证，丢失不可找回
const hashWarning = "请务必保存此哈希，它是修改和删除本帖的唯一凭证，丢失后无法找回。"

// Submit 提交匿名帖子
// @Summary 提交帖子（需人机验证）
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body submitRequest true "提交内容"
// @Success 201 {object} response.Response{data=submitResponse}
// @Failure 400 {object} response.Response
// @Failure 451 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.Submit(c.Request.Context(), service.SubmitInput{
		Title:       req.Title,
		Content:     req.Content,
		Tag:         req.Tag,
		ChallengeID: req.ChallengeID,
		Answer:      req.Answer,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, submitResponse{
		ID:        post.ID,
		Hash:      post.Hash,
		Status:    post.Status,
		CreatedAt: post.CreatedAt.UnixMilli(),
		Warning:   hashWarning,
	})
}

// Feed 信息流分页
// @Summary 信息流（游标分页）
// @Tags 帖子
// @Produce json
// @Param cursor query string false "上一页返回的游标，空串取首页"
// @Param count query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) Feed(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "10"))
	page, err := h.feedService.List(c.Request.Context(), c.Query("cursor"), count)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, page)
}

// GetByNumber 按公开序号查询
// @Summary 按序号查询帖子
// @Tags 帖子
// @Produce json
// @Param number path int true "公开序号"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{number} [get]
func (h *Handler) GetByNumber(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post number")
		return
	}
	post, err := h.postService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// GetByHash 作者按令牌取回自己的帖子
// @Summary 按所有权令牌查询帖子
// @Tags 帖子
// @Produce json
// @Param hash path string true "所有权令牌"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/manage/{hash} [get]
func (h *Handler) GetByHash(c *gin.Context) {
	post, err := h.postService.GetByHash(c.Request.Context(), c.Param("hash"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// DeleteByHash 作者按令牌删除自己的帖子
// @Summary 按所有权令牌删除帖子
// @Tags 帖子
// @Param hash path string true "所有权令牌"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /api/v1/manage/{hash} [delete]
func (h *Handler) DeleteByHash(c *gin.Context) {
	if err := h.postService.DeleteByHash(c.Request.Context(), c.Param("hash")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.NoContent(c)
}
