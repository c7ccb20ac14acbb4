package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/config"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func rateLimitConfig(perMinute int) *config.RateLimitConfig {
	return &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     perMinute,
		RequestsPerMinuteAuth: perMinute,
	}
}

func TestRateLimiterDisabledPassesThrough(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false}, zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(rateLimitConfig(3), zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	var lastCode int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		lastCode = rr.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := middleware.NewRateLimiter(rateLimitConfig(2), zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	// A different client is not affected by the first client's usage
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.RemoteAddr = "10.0.0.4:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiterWhitelistedIP(t *testing.T) {
	cfg := rateLimitConfig(1)
	cfg.WhitelistIPs = []string{"192.168.1.10"}
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
		req.RemoteAddr = "192.168.1.10:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimiterWhitelistedPath(t *testing.T) {
	cfg := rateLimitConfig(1)
	cfg.WhitelistPaths = []string{"/health"}
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.5:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimiterKeysAuthenticatedRequestsByUser(t *testing.T) {
	rl := middleware.NewRateLimiter(rateLimitConfig(2), zap.NewNop())
	handler := rl.Limit(okHandler())

	userA := auth.WithUserContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &auth.UserContext{
		UserID: "user-a", Roles: []domain.UserRoleType{domain.RoleSalesRep},
	})
	userB := auth.WithUserContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &auth.UserContext{
		UserID: "user-b", Roles: []domain.UserRoleType{domain.RoleSalesRep},
	})

	// Both users share an IP but are limited independently
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil).WithContext(userA)
		req.RemoteAddr = "10.0.0.6:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil).WithContext(userB)
	req.RemoteAddr = "10.0.0.6:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
