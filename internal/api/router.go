// Package api 路由装配
package api

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/sns-service/config"
	"github.com/d60-Lab/sns-service/internal/api/handler"
	"github.com/d60-Lab/sns-service/internal/api/middleware"
	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/jwtauth"
)

// 生日不能是未来时间
func notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.After(time.Now())
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notfuture", notFuture)
	}
}

func NewRouter(cfg *config.Config, h *handler.Handler, tokens *jwtauth.Provider, authSvc *service.AuthService) *gin.Engine {
	registerValidations()
	gin.SetMode(func() string {
		if cfg.Server.Mode == "release" {
			return gin.ReleaseMode
		}
		return gin.DebugMode
	}())

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Trace.Enabled {
		r.Use(otelgin.Middleware(cfg.Trace.Service))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	required := middleware.RequireAuth(tokens, authSvc)
	optional := middleware.OptionalAuth(tokens, authSvc)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", required, h.Logout)
		auth.POST("/reissue", h.Reissue)
	}

	members := v1.Group("/members")
	{
		members.POST("/signup", h.SignUp)
		members.POST("/code/check", h.CheckCode)
		members.POST("/code/resend", h.ReSendCode)
		members.POST("/cancel-delete", h.CancelDelete)
		members.POST("/password/reset", h.ResetPassword)
		members.GET("/check/nickname", h.CheckNickname)
		members.GET("/check/email", h.CheckEmail)
		members.GET("/me", required, h.MyInfo)
		members.PATCH("/nickname", required, h.UpdateNickname)
		members.PATCH("/password", required, h.UpdatePassword)
		members.PATCH("/privacy", required, h.UpdatePrivacy)
		members.DELETE("", required, h.DeleteMember)
		members.GET("/:member_id", optional, h.MemberInfo)
		members.GET("/:member_id/profile-images", optional, h.MemberProfileImages)
		members.GET("/:member_id/represent-image", optional, h.RepresentImage)
		members.GET("/:member_id/posts", optional, h.MemberPosts)
	}

	follows := v1.Group("/follows")
	{
		follows.POST("/:member_id", required, h.Follow)
		follows.DELETE("/:member_id", required, h.CancelFollow)
		follows.GET("/me/followers", required, h.ListMyFollowers)
		follows.GET("/me/followings", required, h.ListMyFollowings)
		follows.GET("/:member_id/followers", optional, h.ListFollowers)
		follows.GET("/:member_id/followings", optional, h.ListFollowings)
		follows.GET("/:member_id/follower-count", h.FollowerCount)
		follows.GET("/:member_id/following-count", h.FollowingCount)
	}

	blocks := v1.Group("/blocks", required)
	{
		blocks.POST("/:member_id", h.Block)
		blocks.DELETE("/:member_id", h.CancelBlock)
		blocks.GET("", h.ListBlocked)
	}

	images := v1.Group("/profile-images", required)
	{
		images.POST("", h.SaveProfileImage)
		images.PATCH("/:image_id/represent", h.UpdateRepresentImage)
		images.DELETE("/:image_id", h.DeleteProfileImage)
		images.GET("/me", h.MyProfileImages)
	}

	posts := v1.Group("/posts", required)
	{
		posts.POST("", h.PublishPost)
		posts.DELETE("/:post_id", h.DeletePost)
	}
	v1.GET("/feed", required, h.Feed)

	notifications := v1.Group("/notifications", required)
	{
		notifications.GET("", h.MyNotifications)
		notifications.PATCH("/:notification_id/read", h.ReadNotification)
		notifications.GET("/unread-count", h.UnreadCount)
	}

	return r
}
