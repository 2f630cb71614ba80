package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/vendersphere/pkg/config"
	"github.com/wyfcoding/vendersphere/pkg/ratelimit"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// RateLimitMiddleware 基于 Redis 的请求限流。
// 已认证请求按用户邮箱计数（挂在 JWT 中间件之后才生效），
// 匿名请求退回客户端 IP；限流器自身故障时放行不拦截。
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := ratelimit.Limit{
		Rate:   cfg.Rate,
		Period: time.Duration(cfg.PeriodSeconds) * time.Second,
		Burst:  cfg.Burst,
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), limitKey(c), limit)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetAfter/time.Second), 10))

		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(res.RetryAfter/time.Second), 10))
			response.ErrorWithStatus(c, http.StatusTooManyRequests, "too many requests", "RATE_LIMITED")
			c.Abort()
			return
		}

		c.Next()
	}
}

// limitKey 已认证用户按邮箱计数，未认证按来源 IP
func limitKey(c *gin.Context) string {
	if email := SubjectEmail(c); email != "" {
		return "ratelimit:user:" + email
	}
	return "ratelimit:ip:" + c.ClientIP()
}
