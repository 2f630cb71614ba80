package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/vendersphere/internal/notification/domain"
)

type fakeSubscriberRepo struct {
	emails map[string]bool
}

func (f *fakeSubscriberRepo) Save(ctx context.Context, subscriber *domain.Subscriber) error {
	if f.emails[subscriber.Email] {
		return domain.ErrAlreadySubscribed
	}
	f.emails[subscriber.Email] = true
	return nil
}


func TestSubscribeNormalizesEmail(t *testing.T) {
	repo := &fakeSubscriberRepo{emails: make(map[string]bool)}
	service := NewNotificationApplicationService(repo, nil)

	require.NoError(t, service.Subscribe(context.Background(), "  User@Example.COM "))
	assert.True(t, repo.emails["user@example.com"])
}

func TestSubscribeDuplicate(t *testing.T) {
	repo := &fakeSubscriberRepo{emails: make(map[string]bool)}
	service := NewNotificationApplicationService(repo, nil)

	require.NoError(t, service.Subscribe(context.Background(), "user@example.com"))
	err := service.Subscribe(context.Background(), "USER@example.com")
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	repo := &fakeSubscriberRepo{emails: make(map[string]bool)}
	service := NewNotificationApplicationService(repo, nil)

	assert.ErrorIs(t, service.Subscribe(context.Background(), "not-an-email"), domain.ErrInvalidEmail)
	assert.ErrorIs(t, service.Subscribe(context.Background(), ""), domain.ErrInvalidEmail)
	assert.Empty(t, repo.emails)
}
