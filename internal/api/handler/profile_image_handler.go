package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/response"
)

// SaveProfileImage 上传资料图片，可指定设为代表图
// @Summary 上传资料图片
// @Tags 资料图片
// @Accept json
// @Produce json
// @Param request body service.ProfileImageRequest true "图片信息"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/profile-images [post]
func (h *Handler) SaveProfileImage(c *gin.Context) {
	var req service.ProfileImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.imageSvc.SaveProfileImage(c.Request.Context(), middleware.MemberID(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdateRepresentImage 把指定图片设为代表图，原代表图自动降级
// @Summary 设置代表图
// @Tags 资料图片
// @Produce json
// @Param image_id path string true "图片ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/profile-images/{image_id}/represent [patch]
func (h *Handler) UpdateRepresentImage(c *gin.Context) {
	if err := h.imageSvc.UpdateRepresentImage(c.Request.Context(), middleware.MemberID(c), c.Param("image_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteProfileImage 删除自己的资料图片
// @Summary 删除资料图片
// @Tags 资料图片
// @Produce json
// @Param image_id path string true "图片ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/profile-images/{image_id} [delete]
func (h *Handler) DeleteProfileImage(c *gin.Context) {
	if err := h.imageSvc.DeleteProfileImage(c.Request.Context(), middleware.MemberID(c), c.Param("image_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MyProfileImages 我的图片列表，代表图排最前
// @Summary 我的资料图片
// @Tags 资料图片
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/profile-images/me [get]
func (h *Handler) MyProfileImages(c *gin.Context) {
	list, err := h.imageSvc.GetMyProfileImages(c.Request.Context(), middleware.MemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

// MemberProfileImages 查看会员图片列表，受屏蔽与可见范围约束
// @Summary 会员资料图片
// @Tags 资料图片
// @Param member_id path string true "会员ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/members/{member_id}/profile-images [get]
func (h *Handler) MemberProfileImages(c *gin.Context) {
	list, err := h.imageSvc.GetProfileImages(c.Request.Context(), middleware.MemberID(c), c.Param("member_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

// RepresentImage 会员展示图：有代表图用代表图，否则用最新一张
// @Summary 会员展示图
// @Tags 资料图片
// @Param member_id path string true "会员ID"
// @Success 200 {object} response.Response{data=service.RepresentImage}
// @Router /api/v1/members/{member_id}/represent-image [get]
func (h *Handler) RepresentImage(c *gin.Context) {
	img, err := h.imageSvc.GetRepresentImage(c.Request.Context(), c.Param("member_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, img)
}
