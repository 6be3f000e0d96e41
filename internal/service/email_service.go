package service

import (
	"fmt"
	"net/smtp"

	"hamexam_backend/internal/config"
	"hamexam_backend/pkg/logger"

	"go.uber.org/zap"
)

// EmailService 发送验证码邮件。Host 未配置时进入开发模式，
// 验证码只写日志不外发。
type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendVerificationCode(to, code string) error {
	if s.cfg.Host == "" {
		logger.Log.Info("SMTP 未配置，验证码仅记录日志",
			zap.String("to", to),
			zap.String("code", code),
		)
		return nil
	}

	subject := "业余无线电考试练习平台 - 登录验证码"
	body := fmt.Sprintf("您的登录验证码是：%s\r\n\r\n验证码 10 分钟内有效，请勿泄露给他人。", code)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.cfg.From, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}
