package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/treehole/internal/api/middleware"
	"github.com/d60-Lab/treehole/internal/model"
	"github.com/d60-Lab/treehole/pkg/response"
)

// moderationView 审核端视图，比公开视图多出原因与历史
type moderationView struct {
	ID        string         `json:"id"`
	Number    *int64         `json:"number"`
	Title     string         `json:"title,omitempty"`
	Content   string         `json:"content"`
	Tag       string         `json:"tag"`
	Status    string         `json:"status"`
	FBLink    string         `json:"fbLink,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	History   model.History  `json:"history"`
	CreatedAt int64          `json:"createdAt"`
}

func toModerationView(p *model.Post) moderationView {
	return moderationView{
		ID:        p.ID,
		Number:    p.Number,
		Title:     p.Title,
		Content:   p.Content,
		Tag:       p.Tag,
		Status:    p.Status,
		FBLink:    p.FBLink,
		Reason:    p.Reason,
		History:   p.History,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

func actor(c *gin.Context) string {
	return c.GetString(middleware.CtxModerator)
}

// ListPending 待审列表
// @Summary 待审帖子（按创建时间正序，建议按此顺序处理）
// @Tags 审核
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Security BearerAuth
// @Router /api/v1/moderation/posts [get]
func (h *Handler) ListPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	posts, err := h.modService.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	views := make([]moderationView, len(posts))
	for i, p := range posts {
		views[i] = toModerationView(p)
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": views})
}

// Accept 通过帖子
// @Summary 通过帖子并分配公开序号
// @Tags 审核
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=moderationView}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/moderation/posts/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	post, err := h.modService.Accept(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, toModerationView(post))
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject 驳回帖子
// @Summary 驳回帖子
// @Tags 审核
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body rejectRequest true "驳回原因"
// @Success 200 {object} response.Response{data=moderationView}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/moderation/posts/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.modService.Reject(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, toModerationView(post))
}

type fbLinkRequest struct {
	FBLink string `json:"fbLink" binding:"required,url"`
}

// SetFBLink 补写外部发布链接
// @Summary 设置外部发布链接（仅已通过的帖子）
// @Tags 审核
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body fbLinkRequest true "发布链接"
// @Success 200 {object} response.Response{data=moderationView}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/moderation/posts/{id}/fblink [post]
func (h *Handler) SetFBLink(c *gin.Context) {
	var req fbLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.modService.SetFBLink(c.Request.Context(), c.Param("id"), req.FBLink, actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, toModerationView(post))
}

// Remove 管理员删除帖子
// @Summary 删除帖子（任意状态）
// @Tags 审核
// @Param id path string true "帖子ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/moderation/posts/{id} [delete]
func (h *Handler) Remove(c *gin.Context) {
	if err := h.modService.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.NoContent(c)
}
