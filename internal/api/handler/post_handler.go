package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/pkg/response"
)

type publishRequest struct {
	Title   string `json:"title" binding:"required,max=100"`
	Content string `json:"content" binding:"required,max=5000"`
}

// PublishPost 发布帖子并登记扩散任务
// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body publishRequest true "帖子内容"
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts [post]
func (h *Handler) PublishPost(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, err := h.postSvc.Publish(c.Request.Context(), middleware.MemberID(c), req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"post_id": id})
}

// DeletePost 删除自己的帖子并清理收件箱
// @Summary 删除帖子
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postSvc.Delete(c.Request.Context(), middleware.MemberID(c), c.Param("post_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MemberPosts 查看会员帖子，受屏蔽与可见范围约束
// @Summary 会员帖子列表
// @Tags 帖子
// @Param member_id path string true "会员ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response
// @Router /api/v1/members/{member_id}/posts [get]
func (h *Handler) MemberPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.postSvc.GetMemberPosts(c.Request.Context(), middleware.MemberID(c), c.Param("member_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// Feed 我的时间线，来自收件箱
// @Summary 时间线
// @Tags 帖子
// @Param limit query int false "条数" default(20)
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.postSvc.GetFeed(c.Request.Context(), middleware.MemberID(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}
