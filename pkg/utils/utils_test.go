package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Pagination
		wantPage  int
		wantLimit int
	}{
		{"defaults applied", Pagination{Page: 0, Limit: 0}, 1, 10},
		{"negative page", Pagination{Page: -3, Limit: 20}, 1, 20},
		{"limit capped", Pagination{Page: 2, Limit: 500}, 2, 100},
		{"valid untouched", Pagination{Page: 3, Limit: 12}, 3, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize(10, 100)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Pagination{Page: 3, Limit: 10}.Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestBusinessNumbers(t *testing.T) {
	orderNo := NewOrderNo()
	assert.True(t, strings.HasPrefix(orderNo, "ORD-"))

	payoutNo := NewPayoutNo()
	assert.True(t, strings.HasPrefix(payoutNo, "PO-"))

	assert.NotEqual(t, NewOrderNo(), NewOrderNo())
}

func TestSnowflakeIDsAreMonotonic(t *testing.T) {
	gen := NewSnowflakeID(1)
	prev := gen.Generate()
	for i := 0; i < 1000; i++ {
		next := gen.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}
