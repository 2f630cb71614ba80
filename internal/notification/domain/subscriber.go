// Package domain 包含订阅通知的领域模型
package domain

import (
	"errors"
	"net/mail"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrAlreadySubscribed 邮箱已订阅
	ErrAlreadySubscribed = errors.New("email is already subscribed")
	// ErrInvalidEmail 邮箱格式不合法
	ErrInvalidEmail = errors.New("invalid email address")
)

// Subscriber 新闻订阅记录
type Subscriber struct {
	gorm.Model
	Email string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
}

func (Subscriber) TableName() string { return "newsletter_subscribers" }

// NormalizeEmail 小写并去除首尾空白，校验格式
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}
