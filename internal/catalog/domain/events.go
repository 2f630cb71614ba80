package domain

import "time"

// TopicProducts 商品事件 topic
const TopicProducts = "vendersphere.products"

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID   uint      `json:"product_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	SellerEmail string    `json:"seller_email"`
	Timestamp   time.Time `json:"timestamp"`
}

// ProductStockChangedEvent 商品库存变更事件
type ProductStockChangedEvent struct {
	ProductID uint      `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductStatusChangedEvent 商品状态变更事件
type ProductStatusChangedEvent struct {
	ProductID uint      `json:"product_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
