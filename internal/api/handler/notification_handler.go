package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/pkg/response"
)

// MyNotifications 我的通知列表
// @Summary 通知列表
// @Tags 通知
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/notifications [get]
func (h *Handler) MyNotifications(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.notificationSvc.GetMyNotifications(c.Request.Context(), middleware.MemberID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ReadNotification 标记通知已读
// @Summary 标记已读
// @Tags 通知
// @Produce json
// @Param notification_id path string true "通知ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/notifications/{notification_id}/read [patch]
func (h *Handler) ReadNotification(c *gin.Context) {
	if err := h.notificationSvc.MarkRead(c.Request.Context(), middleware.MemberID(c), c.Param("notification_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UnreadCount 未读通知数
// @Summary 未读数
// @Tags 通知
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	cnt, err := h.notificationSvc.CountUnread(c.Request.Context(), middleware.MemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": cnt})
}
