package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/vendersphere/internal/cart/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建购物车仓储实例
func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByUserEmail(ctx context.Context, userEmail string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).Preload("Items").Where("user_email = ?", userEmail).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Update 读-改-写整体在一个事务内，购物车行持 FOR UPDATE 锁，
// 并发合并在锁上排队，不会出现两边都基于旧数量写回的丢失更新。
func (r *cartRepository) Update(ctx context.Context, userEmail string, createIfAbsent bool, mutate func(*domain.Cart) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, userEmail)
		if errors.Is(err, domain.ErrCartNotFound) {
			if !createIfAbsent {
				return err
			}
			cart = &domain.Cart{UserEmail: userEmail}
			if createErr := tx.Omit("Items").Create(cart).Error; createErr != nil {
				// 并发的首次加购撞了 user_email 唯一索引，改走对方已建的行
				if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
					return createErr
				}
				if cart, err = lockCart(tx, userEmail); err != nil {
					return err
				}
			}
		} else if err != nil {
			return err
		}

		if err := mutate(cart); err != nil {
			return err
		}

		// 锁内全量重写行，保证同一商品至多一行
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		if len(cart.Items) > 0 {
			if err := tx.Create(&cart.Items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&domain.Cart{}).Where("id = ?", cart.ID).
			UpdateColumn("updated_at", time.Now()).Error
	})
}

func lockCart(tx *gorm.DB, userEmail string) (*domain.Cart, error) {
	var cart domain.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_email = ?", userEmail).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Where("cart_id = ?", cart.ID).Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Delete(ctx context.Context, userEmail string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, userEmail)
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(cart).Error
	})
}
