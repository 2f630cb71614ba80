package domain

import "context"

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// CreateWithStockDecrement 在单个事务内完成库存条件扣减与订单落库。
	// 任一商品扣减失败（不存在或库存不足）则整体回滚，不产生订单。
	CreateWithStockDecrement(ctx context.Context, order *Order) error

	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	ListByUser(ctx context.Context, userEmail string, page, limit int) ([]*Order, int64, error)
	// List 管理端列表，status 为空表示全部
	List(ctx context.Context, status OrderStatus, page, limit int) ([]*Order, int64, error)

	// CancelWithRestock 条件化取消（仅限可取消状态）并在同一事务内回补库存。
	// 状态不满足时返回 ErrNotCancellable。
	CancelWithRestock(ctx context.Context, orderNo string) error

	// UpdateStatusFrom 条件化状态流转：仅当当前状态属于 from 集合时生效，
	// 否则返回 ErrInvalidTransition。
	UpdateStatusFrom(ctx context.Context, orderNo string, from []OrderStatus, to OrderStatus) error
}

// EventPublisher 订单事件发布者接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
