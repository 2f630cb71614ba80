package domain

import "context"

// CartRepository 购物车仓储接口
type CartRepository interface {
	// GetByUserEmail 购物车不存在时返回 ErrCartNotFound
	GetByUserEmail(ctx context.Context, userEmail string) (*Cart, error)
	// Update 在单个事务内加锁读取、应用 mutate、整车重写。
	// 读-改-写必须持同一把行锁，否则并发合并会相互覆盖丢失增量。
	// createIfAbsent 为 true 时购物车不存在则新建，否则返回 ErrCartNotFound。
	Update(ctx context.Context, userEmail string, createIfAbsent bool, mutate func(*Cart) error) error
	Delete(ctx context.Context, userEmail string) error
}
