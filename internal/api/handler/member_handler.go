package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/response"
)

type checkCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type resendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type updateNicknameRequest struct {
	Nickname string `json:"nickname" binding:"required,max=30"`
}

type updatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=64"`
}

type updatePrivacyRequest struct {
	Visibility string `json:"visibility" binding:"required,oneof=PUBLIC FOLLOWER_ONLY PRIVATE"`
}

// SignUp 注册新会员，注册后向邮箱发送验证码
// @Summary 注册
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body service.SignUpRequest true "注册信息"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 409 {object} response.Response
// @Router /api/v1/members/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req service.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, err := h.memberSvc.SignUp(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"member_id": id})
}

// CheckCode 校验邮箱验证码，通过后晋级为正式会员
// @Summary 校验验证码
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body checkCodeRequest true "邮箱与验证码"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/members/code/check [post]
func (h *Handler) CheckCode(c *gin.Context) {
	var req checkCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.memberSvc.CheckCode(c.Request.Context(), req.Email, req.Code); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ReSendCode 重发验证码，邮箱未注册也返回成功防枚举
// @Summary 重发验证码
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body resendCodeRequest true "邮箱"
// @Success 200 {object} response.Response
// @Router /api/v1/members/code/resend [post]
func (h *Handler) ReSendCode(c *gin.Context) {
	var req resendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.memberSvc.ReSendCode(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CheckNickname 昵称是否已被占用，占用时 duplicated 为 true
// @Summary 昵称重复检查
// @Tags 会员
// @Param nickname query string true "昵称"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/members/check/nickname [get]
func (h *Handler) CheckNickname(c *gin.Context) {
	nickname := c.Query("nickname")
	if nickname == "" {
		response.BadRequest(c, "nickname is required")
		return
	}
	duplicated, err := h.memberSvc.CheckDuplicateNickname(c.Request.Context(), nickname)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"duplicated": duplicated})
}

// CheckEmail 邮箱是否已被占用，占用时 duplicated 为 true
// @Summary 邮箱重复检查
// @Tags 会员
// @Param email query string true "邮箱"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/members/check/email [get]
func (h *Handler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email is required")
		return
	}
	duplicated, err := h.memberSvc.CheckDuplicateEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"duplicated": duplicated})
}

// UpdateNickname 修改昵称
// @Summary 修改昵称
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body updateNicknameRequest true "新昵称"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/members/nickname [patch]
func (h *Handler) UpdateNickname(c *gin.Context) {
	var req updateNicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.memberSvc.UpdateNickname(c.Request.Context(), middleware.MemberID(c), req.Nickname); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdatePassword 修改密码
// @Summary 修改密码
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body updatePasswordRequest true "新密码"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/members/password [patch]
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.memberSvc.UpdatePassword(c.Request.Context(), middleware.MemberID(c), req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdatePrivacy 修改账号可见范围
// @Summary 修改可见范围
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body updatePrivacyRequest true "可见范围"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/members/privacy [patch]
func (h *Handler) UpdatePrivacy(c *gin.Context) {
	var req updatePrivacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.memberSvc.UpdatePrivacy(c.Request.Context(), middleware.MemberID(c), model.Visibility(req.Visibility)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteMember 申请注销，进入待删除状态
// @Summary 注销账号
// @Tags 会员
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/members [delete]
func (h *Handler) DeleteMember(c *gin.Context) {
	if err := h.memberSvc.DeleteMember(c.Request.Context(), middleware.MemberID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CancelDelete 取消注销，需要四项信息全部匹配
// @Summary 取消注销
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body service.CancelDeleteRequest true "身份信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/members/cancel-delete [post]
func (h *Handler) CancelDelete(c *gin.Context) {
	var req service.CancelDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.memberSvc.CancelDeleteMember(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ResetPassword 发送临时密码
// @Summary 重置密码
// @Tags 会员
// @Accept json
// @Produce json
// @Param request body service.PasswordResetRequest true "身份信息"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/members/password/reset [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req service.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.memberSvc.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MyInfo 我的资料
// @Summary 我的资料
// @Tags 会员
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.MemberInfo}
// @Router /api/v1/members/me [get]
func (h *Handler) MyInfo(c *gin.Context) {
	info, err := h.memberQuerySvc.GetMyInfo(c.Request.Context(), middleware.MemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// MemberInfo 查看会员资料，受屏蔽与可见范围约束
// @Summary 会员资料
// @Tags 会员
// @Param member_id path string true "会员ID"
// @Success 200 {object} response.Response{data=service.MemberInfo}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/members/{member_id} [get]
func (h *Handler) MemberInfo(c *gin.Context) {
	info, err := h.memberQuerySvc.GetMemberInfo(c.Request.Context(), middleware.MemberID(c), c.Param("member_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}
