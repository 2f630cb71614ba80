// Package mail 基于 SMTP 的邮件发送实现
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/wyfcoding/vendersphere/internal/notification/domain"
	"github.com/wyfcoding/vendersphere/pkg/config"
)

// smtpSender 通过 SMTP 发信；凭证为空时退化为仅打日志的空实现由上层决定
type smtpSender struct {
	cfg config.MailConfig
}

// NewSMTPSender 创建 SMTP 邮件发送器
func NewSMTPSender(cfg config.MailConfig) domain.Sender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}
