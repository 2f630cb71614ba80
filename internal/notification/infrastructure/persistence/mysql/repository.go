package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/vendersphere/internal/notification/domain"
	"gorm.io/gorm"
)

type subscriberRepository struct{ db *gorm.DB }

// NewSubscriberRepository 创建订阅者仓储实例
func NewSubscriberRepository(db *gorm.DB) domain.SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) Save(ctx context.Context, subscriber *domain.Subscriber) error {
	err := r.db.WithContext(ctx).Create(subscriber).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadySubscribed
	}
	return err
}
