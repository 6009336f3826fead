package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/pkg/response"
)

const defaultRateLimitKeys = 10000

type hitWindow struct {
	start time.Time
	count int
}

type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   *expirable.LRU[string, *hitWindow]
	now    func() time.Time
}

// RateLimit allows limit requests per window for each client ip and route.
// Tracked keys are bounded so a flood of distinct clients cannot grow memory.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return newRateLimiter(limit, window, defaultRateLimitKeys).handle
}

func newRateLimiter(limit int, window time.Duration, size int) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		hits:   expirable.NewLRU[string, *hitWindow](size, nil, window),
		now:    time.Now,
	}
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.limit <= 0 || l.window <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, path}, "|")

	now := l.now()
	l.mu.Lock()
	w, ok := l.hits.Get(key)
	if !ok || now.Sub(w.start) >= l.window {
		w = &hitWindow{start: now}
		l.hits.Add(key, w)
	}
	w.count++
	exceeded := w.count > l.limit
	l.mu.Unlock()

	if exceeded {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", path),
		)
		response.Abort(c, http.StatusTooManyRequests, appErr.ErrTooMany.Error())
		return
	}
	c.Next()
}
