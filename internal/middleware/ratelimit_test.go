package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func runLimiter(l *rateLimiter, remoteAddr string) *gin.Context {
	c, _ := runLimiterRecorded(l, remoteAddr)
	return c
}

func runLimiterRecorded(l *rateLimiter, remoteAddr string) (*gin.Context, *httptest.ResponseRecorder) {
	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/token", nil)
	c.Request.RemoteAddr = remoteAddr
	l.handle(c)
	return c, resp
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Now()
	limiter := newRateLimiter(2, time.Minute, 16)
	limiter.now = func() time.Time { return now }

	require.False(t, runLimiter(limiter, "10.0.0.1:1000").IsAborted())
	require.False(t, runLimiter(limiter, "10.0.0.1:1000").IsAborted())
	blocked, resp := runLimiterRecorded(limiter, "10.0.0.1:1000")
	require.True(t, blocked.IsAborted())
	require.Equal(t, http.StatusTooManyRequests, blocked.Writer.Status())
	require.JSONEq(t, `{"error":"too many requests"}`, resp.Body.String())

	require.False(t, runLimiter(limiter, "10.0.0.2:1000").IsAborted())
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Now()
	limiter := newRateLimiter(1, time.Minute, 16)
	limiter.now = func() time.Time { return now }

	require.False(t, runLimiter(limiter, "10.0.0.1:1000").IsAborted())
	require.True(t, runLimiter(limiter, "10.0.0.1:1000").IsAborted())

	now = now.Add(time.Minute)
	require.False(t, runLimiter(limiter, "10.0.0.1:1000").IsAborted())
}

func TestRateLimiterDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newRateLimiter(0, time.Minute, 16)
	for i := 0; i < 5; i++ {
		require.False(t, runLimiter(limiter, "10.0.0.1:1000").IsAborted())
	}
}
