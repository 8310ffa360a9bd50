package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/jwtauth"
	"github.com/d60-Lab/sns-service/pkg/response"
)

const (
	ContextMemberID = "memberID"
	ContextRole     = "role"
	contextToken    = "accessToken"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// RequireAuth 强制登录
// 令牌缺失、失效或已注销登录一律 401
func RequireAuth(tokens *jwtauth.Provider, authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		if authSvc.IsBlacklisted(c.Request.Context(), token) {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextMemberID, claims.MemberID)
		c.Set(ContextRole, claims.Role)
		c.Set(contextToken, token)
		c.Next()
	}
}

// OptionalAuth 可选登录
// 有合法令牌就注入身份，没有就按匿名访客放行
func OptionalAuth(tokens *jwtauth.Provider, authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if claims, err := tokens.ParseAccessToken(token); err == nil &&
				!authSvc.IsBlacklisted(c.Request.Context(), token) {
				c.Set(ContextMemberID, claims.MemberID)
				c.Set(ContextRole, claims.Role)
				c.Set(contextToken, token)
			}
		}
		c.Next()
	}
}

// MemberID 从上下文取登录者 ID，匿名时返回空串
func MemberID(c *gin.Context) string {
	return c.GetString(ContextMemberID)
}

// AccessToken 取当前请求携带的访问令牌
func AccessToken(c *gin.Context) string {
	return c.GetString(contextToken)
}
