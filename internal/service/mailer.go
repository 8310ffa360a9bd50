package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/sns-service/pkg/logger"
)

// Mailer 邮件边界
// 投递实现不属于核心，线上接网关，开发环境只记日志
type Mailer interface {
	SendCode(ctx context.Context, email, code string) error
	SendTempPassword(ctx context.Context, email, tempPassword string) error
}

// LogMailer 开发用实现，写日志代替真实投递
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (m *LogMailer) SendCode(ctx context.Context, email, code string) error {
	logger.Info("send verification code", zap.String("email", email), zap.String("code", code))
	return nil
}

func (m *LogMailer) SendTempPassword(ctx context.Context, email, tempPassword string) error {
	logger.Info("send temp password", zap.String("email", email))
	return nil
}
