package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/pkg/response"
)

// Follow 关注指定会员
// @Summary 关注会员
// @Tags 关注
// @Produce json
// @Param member_id path string true "会员ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/follows/{member_id} [post]
func (h *Handler) Follow(c *gin.Context) {
	if err := h.followSvc.Follow(c.Request.Context(), middleware.MemberID(c), c.Param("member_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CancelFollow 取消关注
// @Summary 取消关注
// @Tags 关注
// @Produce json
// @Param member_id path string true "会员ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/follows/{member_id} [delete]
func (h *Handler) CancelFollow(c *gin.Context) {
	if err := h.followSvc.CancelFollow(c.Request.Context(), middleware.MemberID(c), c.Param("member_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListMyFollowers 我的粉丝列表
// @Summary 我的粉丝列表
// @Tags 关注
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/follows/me/followers [get]
func (h *Handler) ListMyFollowers(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.followSvc.GetMyFollowerList(c.Request.Context(), middleware.MemberID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListMyFollowings 我的关注列表
// @Summary 我的关注列表
// @Tags 关注
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/follows/me/followings [get]
func (h *Handler) ListMyFollowings(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.followSvc.GetMyFollowingList(c.Request.Context(), middleware.MemberID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListFollowers 查看他人粉丝列表，受屏蔽与可见范围约束
// @Summary 会员粉丝列表
// @Tags 关注
// @Param member_id path string true "会员ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/follows/{member_id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.followSvc.GetFollowerList(c.Request.Context(), middleware.MemberID(c), c.Param("member_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListFollowings 查看他人关注列表，受屏蔽与可见范围约束
// @Summary 会员关注列表
// @Tags 关注
// @Param member_id path string true "会员ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/follows/{member_id}/followings [get]
func (h *Handler) ListFollowings(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.followSvc.GetFollowingList(c.Request.Context(), middleware.MemberID(c), c.Param("member_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// FollowerCount 粉丝数（带缓存）
// @Summary 会员粉丝数
// @Tags 关注
// @Param member_id path string true "会员ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/follows/{member_id}/follower-count [get]
func (h *Handler) FollowerCount(c *gin.Context) {
	cnt, err := h.followSvc.GetFollowerCount(c.Request.Context(), c.Param("member_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": cnt})
}

// FollowingCount 关注数（带缓存）
// @Summary 会员关注数
// @Tags 关注
// @Param member_id path string true "会员ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/follows/{member_id}/following-count [get]
func (h *Handler) FollowingCount(c *gin.Context) {
	cnt, err := h.followSvc.GetFollowingCount(c.Request.Context(), c.Param("member_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": cnt})
}
