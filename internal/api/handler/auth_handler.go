package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/response"
)

type reissueRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Login 邮箱密码登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.TokenPair}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pair, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pair)
}

// Logout 注销登录，当前访问令牌立即失效
// @Summary 注销登录
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), middleware.MemberID(c), middleware.AccessToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Reissue 刷新令牌换新令牌对
// @Summary 刷新令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body reissueRequest true "刷新令牌"
// @Success 200 {object} response.Response{data=service.TokenPair}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/reissue [post]
func (h *Handler) Reissue(c *gin.Context) {
	var req reissueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pair, err := h.authSvc.ReissueToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pair)
}
