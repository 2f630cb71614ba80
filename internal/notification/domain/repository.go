package domain

import "context"

// SubscriberRepository 订阅者仓储接口
type SubscriberRepository interface {
	// Save 写入订阅记录，邮箱已存在时返回 ErrAlreadySubscribed
	Save(ctx context.Context, subscriber *Subscriber) error
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
