package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/vendersphere/pkg/config"
	"github.com/wyfcoding/vendersphere/pkg/ratelimit"
)

type fakeLimiter struct {
	keys    []string
	allowed bool
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit ratelimit.Limit) (*ratelimit.Result, error) {
	f.keys = append(f.keys, key)
	return &ratelimit.Result{
		Allowed:    f.allowed,
		Remaining:  1,
		ResetAfter: time.Second,
		RetryAfter: time.Second,
	}, nil
}

func limitedRequest(t *testing.T, limiter *fakeLimiter, subject string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	if subject != "" {
		c.Set(SubjectEmailKey, subject)
	}

	cfg := config.RateLimitConfig{Enabled: true, Rate: 10, PeriodSeconds: 1, Burst: 20}
	RateLimitMiddleware(limiter, cfg)(c)
	return recorder
}

func TestRateLimitKeysAuthenticatedBySubject(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}

	limitedRequest(t, limiter, "buyer@example.com")

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "ratelimit:user:buyer@example.com", limiter.keys[0])
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}

	limitedRequest(t, limiter, "")

	require.Len(t, limiter.keys, 1)
	assert.Contains(t, limiter.keys[0], "ratelimit:ip:")
}

func TestRateLimitRejectsWhenExhausted(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}

	recorder := limitedRequest(t, limiter, "buyer@example.com")

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("Retry-After"))
}
