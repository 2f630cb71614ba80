// Package domain 包含购物车的领域模型
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrCartNotFound 购物车不存在
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound 购物车行不存在
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrInvalidQuantity 数量必须大于等于 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Cart 购物车，每个用户一个，首次加购时懒创建
type Cart struct {
	gorm.Model
	UserEmail string     `gorm:"column:user_email;type:varchar(255);uniqueIndex;not null" json:"user_email"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

func (Cart) TableName() string { return "carts" }

// CartItem 购物车行，快照商品名称/价格/图片
// 同一商品至多一行
type CartItem struct {
	gorm.Model
	CartID    uint            `gorm:"column:cart_id;index;not null" json:"cart_id"`
	ProductID uint            `gorm:"column:product_id;not null" json:"product_id"`
	Name      string          `gorm:"column:name;type:varchar(255)" json:"name"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(20,2)" json:"price"`
	Image     string          `gorm:"column:image;type:varchar(512)" json:"image"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
}

func (CartItem) TableName() string { return "cart_items" }

// Merge 合并一批来货行：同商品行数量累加，否则追加新行。
// 单次调用恰好生效一次；重复调用会再次累加。
func (c *Cart) Merge(incoming []CartItem) {
	for _, in := range incoming {
		if in.Quantity < 1 {
			continue
		}
		merged := false
		for i := range c.Items {
			if c.Items[i].ProductID == in.ProductID {
				c.Items[i].Quantity += in.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, CartItem{
				ProductID: in.ProductID,
				Name:      in.Name,
				Price:     in.Price,
				Image:     in.Image,
				Quantity:  in.Quantity,
			})
		}
	}
	c.UpdatedAt = time.Now()
}

// SetQuantity 直接设置某行数量
func (c *Cart) SetQuantity(productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrCartItemNotFound
}

// RemoveItem 移除某行
func (c *Cart) RemoveItem(productID uint) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrCartItemNotFound
}

// Total 购物车总金额
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount 商品件数合计
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
