// Package handler HTTP 接口层，只做参数绑定和错误翻译
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/service"
)

type Handler struct {
	authSvc         *service.AuthService
	memberSvc       *service.MemberService
	memberQuerySvc  *service.MemberQueryService
	followSvc       *service.FollowService
	blockSvc        *service.BlockService
	imageSvc        *service.ProfileImageService
	postSvc         *service.PostService
	notificationSvc *service.NotificationService
}

func New(
	authSvc *service.AuthService,
	memberSvc *service.MemberService,
	memberQuerySvc *service.MemberQueryService,
	followSvc *service.FollowService,
	blockSvc *service.BlockService,
	imageSvc *service.ProfileImageService,
	postSvc *service.PostService,
	notificationSvc *service.NotificationService,
) *Handler {
	return &Handler{
		authSvc:         authSvc,
		memberSvc:       memberSvc,
		memberQuerySvc:  memberQuerySvc,
		followSvc:       followSvc,
		blockSvc:        blockSvc,
		imageSvc:        imageSvc,
		postSvc:         postSvc,
		notificationSvc: notificationSvc,
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return page, pageSize
}
