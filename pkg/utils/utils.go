// Package utils 提供时间/ID（雪花）/分页等通用工具
package utils

import (
	"fmt"
	"sync"
	"time"
)

// SnowflakeID 雪花算法 ID 生成器
type SnowflakeID struct {
	mu        sync.Mutex
	timestamp int64
	sequence  int64
	nodeID    int64
}

// NewSnowflakeID 创建雪花 ID 生成器
func NewSnowflakeID(nodeID int64) *SnowflakeID {
	return &SnowflakeID{nodeID: nodeID & 0x3FF} // 10 bits
}

// Generate 生成雪花 ID
func (s *SnowflakeID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now == s.timestamp {
		s.sequence = (s.sequence + 1) & 0xFFF // 12 bits
		if s.sequence == 0 {
			for now <= s.timestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}
	s.timestamp = now

	// timestamp(41 bits) + nodeID(10 bits) + sequence(12 bits)
	return (now << 22) | (s.nodeID << 12) | s.sequence
}

var defaultIDGen = NewSnowflakeID(1)

// GenID 使用默认节点生成雪花 ID
func GenID() int64 {
	return defaultIDGen.Generate()
}

// NewOrderNo 生成业务订单号
func NewOrderNo() string {
	return fmt.Sprintf("ORD-%d", GenID())
}

// NewPayoutNo 生成提现单号
func NewPayoutNo() string {
	return fmt.Sprintf("PO-%d", GenID())
}

// Pagination 分页参数
type Pagination struct {
	Page  int
	Limit int
}

// Normalize 纠正越界的分页参数
func (p Pagination) Normalize(defaultLimit, maxLimit int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset 计算偏移量
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages 计算总页数
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}
