package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/pkg/response"
)

// Block 屏蔽指定会员，双方关注关系会被同时清除
// @Summary 屏蔽会员
// @Tags 屏蔽
// @Produce json
// @Param member_id path string true "会员ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/blocks/{member_id} [post]
func (h *Handler) Block(c *gin.Context) {
	if err := h.blockSvc.BlockMember(c.Request.Context(), middleware.MemberID(c), c.Param("member_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CancelBlock 解除屏蔽，已清掉的关注关系不会恢复
// @Summary 解除屏蔽
// @Tags 屏蔽
// @Produce json
// @Param member_id path string true "会员ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/blocks/{member_id} [delete]
func (h *Handler) CancelBlock(c *gin.Context) {
	if err := h.blockSvc.CancelBlock(c.Request.Context(), middleware.MemberID(c), c.Param("member_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListBlocked 我的屏蔽列表
// @Summary 我的屏蔽列表
// @Tags 屏蔽
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/blocks [get]
func (h *Handler) ListBlocked(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.blockSvc.GetBlockList(c.Request.Context(), middleware.MemberID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
