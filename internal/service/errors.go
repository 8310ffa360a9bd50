package service

import "errors"

// 业务错误哨兵，pkg/response 负责映射到 HTTP 状态
var (
	// 400
	ErrInvalidRequest = errors.New("invalid request")

	// 401
	ErrInvalidCode          = errors.New("invalid email or verification code")
	ErrSuspendedMember      = errors.New("member is suspended")
	ErrWaitingDeletedMember = errors.New("member is waiting for deletion")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidCredentials   = errors.New("invalid email or password")

	// 403 访问拒绝三类，调用方可区分
	ErrBlockedMember          = errors.New("access denied by block")
	ErrVisibilityPrivate      = errors.New("profile is private")
	ErrVisibilityFollowerOnly = errors.New("profile is follower only")

	// 404
	ErrNotFoundMember       = errors.New("member not found")
	ErrNotFoundProfileImage = errors.New("profile image not found")
	ErrNotFoundPost         = errors.New("post not found")

	// 409
	ErrDuplicateNickname      = errors.New("duplicate nickname")
	ErrDuplicateEmail         = errors.New("duplicate email")
	ErrDuplicateMember        = errors.New("duplicate member")
	ErrDuplicateBlock         = errors.New("already blocked")
	ErrDuplicateFollow        = errors.New("already followed")
	ErrAlreadyAuthenticated   = errors.New("member already authenticated")
	ErrDuplicateRepresentRace = errors.New("representative image update conflicted")
)
