package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRouterForTest(t *testing.T, cfg *Config, client *redis.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m, err := NewManager(cfg, client)
	require.NoError(t, err)
	r.POST("/auth/token", m.LoginMiddleware(), func(c *gin.Context) { c.String(200, "ok") })
	return r
}

func doReq(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", http.NoBody)
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	r.ServeHTTP(w, req)
	return w
}

func testConfig(limit int64, period time.Duration) *Config {
	return &Config{
		Login:    RateConfig{Limit: limit, Period: period},
		Prefix:   "test:ratelimit:",
		MaxRetry: 1,
	}
}

func TestInMemoryLoginRateLimit_BlocksSecondRequest(t *testing.T) {
	r := buildRouterForTest(t, testConfig(1, time.Second), nil)

	res1 := doReq(r, "1.2.3.4")
	require.Equal(t, 200, res1.Code)
	res2 := doReq(r, "1.2.3.4")
	require.Equal(t, 429, res2.Code)
	assert.Equal(t, "application/problem+json", res2.Header().Get("Content-Type"))
	assert.Contains(t, res2.Body.String(), ErrCodeRateLimited)
	// Other clients keep their own budget
	res3 := doReq(r, "4.3.2.1")
	require.Equal(t, 200, res3.Code)
}

func TestInMemoryLoginRateLimit_RefillAfterPeriod(t *testing.T) {
	r := buildRouterForTest(t, testConfig(1, 100*time.Millisecond), nil)

	res1 := doReq(r, "5.6.7.8")
	require.Equal(t, 200, res1.Code)
	res2 := doReq(r, "5.6.7.8")
	require.Equal(t, 429, res2.Code)
	time.Sleep(150 * time.Millisecond)
	res3 := doReq(r, "5.6.7.8")
	require.Equal(t, 200, res3.Code)
}

func TestInMemoryLoginRateLimit_SetsHeaders(t *testing.T) {
	r := buildRouterForTest(t, testConfig(2, time.Minute), nil)
	res := doReq(r, "9.9.9.9")
	require.Equal(t, 200, res.Code)
	require.Equal(t, "2", res.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", res.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, res.Header().Get("X-RateLimit-Reset"))
}

func TestRedisLoginRateLimit_SharesCounters(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cfg := testConfig(1, time.Minute)
	first := buildRouterForTest(t, cfg, client)
	second := buildRouterForTest(t, cfg, client)

	require.Equal(t, 200, doReq(first, "7.7.7.7").Code)
	require.Equal(t, 429, doReq(second, "7.7.7.7").Code)
}

func TestFromAppConfig(t *testing.T) {
	t.Run("Should disable the limiter when turned off", func(t *testing.T) {
		cfg := &config.Config{}
		got := FromAppConfig(cfg)
		assert.True(t, got.Login.Disabled)
		r := buildRouterForTest(t, got, nil)
		for range 5 {
			require.Equal(t, 200, doReq(r, "1.1.1.1").Code)
		}
	})
	t.Run("Should carry configured limits", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Login = config.RateConfig{Limit: 3, Period: time.Hour}
		got := FromAppConfig(cfg)
		assert.False(t, got.Login.Disabled)
		assert.Equal(t, int64(3), got.Login.Limit)
		assert.Equal(t, time.Hour, got.Login.Period)
	})
	t.Run("Should reject a non-positive enabled limit", func(t *testing.T) {
		_, err := NewManager(&Config{Login: RateConfig{Limit: 0, Period: time.Minute}}, nil)
		assert.Error(t, err)
		assert.Empty(t, core.CodeOf(err))
	})
}
