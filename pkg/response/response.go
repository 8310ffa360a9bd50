// Package response 统一响应封装
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/sns-service/internal/service"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg})
}

func InternalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: err.Error()})
}

// Error 把业务错误映射到 HTTP 状态码
// 未识别的错误一律按 500 处理
func Error(c *gin.Context, err error) {
	status := statusOf(err)
	c.JSON(status, Response{Code: status, Message: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrSuspendedMember),
		errors.Is(err, service.ErrWaitingDeletedMember),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrBlockedMember),
		errors.Is(err, service.ErrVisibilityPrivate),
		errors.Is(err, service.ErrVisibilityFollowerOnly):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFoundMember),
		errors.Is(err, service.ErrNotFoundProfileImage),
		errors.Is(err, service.ErrNotFoundPost):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateNickname),
		errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateMember),
		errors.Is(err, service.ErrDuplicateBlock),
		errors.Is(err, service.ErrDuplicateFollow),
		errors.Is(err, service.ErrAlreadyAuthenticated),
		errors.Is(err, service.ErrDuplicateRepresentRace):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
