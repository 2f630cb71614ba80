// Package application 订阅与邮件通知的用例逻辑
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/vendersphere/internal/notification/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
)

const sendTimeout = 10 * time.Second

// NotificationApplicationService 通知应用服务
type NotificationApplicationService struct {
	subscribers domain.SubscriberRepository
	sender      domain.Sender
}

// NewNotificationApplicationService 创建通知应用服务实例
func NewNotificationApplicationService(subscribers domain.SubscriberRepository, sender domain.Sender) *NotificationApplicationService {
	return &NotificationApplicationService{subscribers: subscribers, sender: sender}
}

// Subscribe 订阅新闻邮件：重复订阅返回 ErrAlreadySubscribed，
// 成功后异步发送确认邮件，发信失败只记日志不影响订阅结果。
func (s *NotificationApplicationService) Subscribe(ctx context.Context, email string) error {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return err
	}

	if err := s.subscribers.Save(ctx, &domain.Subscriber{Email: normalized}); err != nil {
		return err
	}

	s.SendAsync(ctx, normalized, "Welcome to VenderSphere",
		"Thanks for subscribing to the VenderSphere newsletter. You'll hear from us about new arrivals and flash sales.")

	logger.Info(ctx, "Newsletter subscription added", "email", normalized)
	return nil
}

// SendAsync 异步发送邮件，不阻塞调用方，失败仅记日志
func (s *NotificationApplicationService) SendAsync(ctx context.Context, to, subject, body string) {
	if s.sender == nil {
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.sender.Send(sendCtx, to, subject, body); err != nil {
			logger.Warn(ctx, "Failed to send email", "to", to, "subject", subject, "error", err)
		}
	}()
}
