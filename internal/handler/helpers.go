package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/propinspect/internal/middleware"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

// requestBaseURL rebuilds scheme://host of the inbound request, honouring the
// first hop of the usual proxy headers.
func requestBaseURL(c *gin.Context) string {
	proto := firstHeaderValue(c.GetHeader("X-Forwarded-Proto"))
	if proto == "" {
		if c.Request.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := firstHeaderValue(c.GetHeader("X-Forwarded-Host"))
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}

func firstHeaderValue(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

func parseUintQuery(c *gin.Context, name string) uint {
	value := c.Query(name)
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return uint(parsed)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, message := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, appErr.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, appErr.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, appErr.ErrInvalid):
		status, message = http.StatusBadRequest, "invalid request"
	case errors.Is(err, appErr.ErrConflict):
		status, message = http.StatusConflict, "conflict"
	case errors.Is(err, appErr.ErrTooMany):
		status, message = http.StatusTooManyRequests, appErr.ErrTooMany.Error()
	case errors.Is(err, appErr.ErrTooLarge):
		status, message = http.StatusRequestEntityTooLarge, "payload too large"
	}
	logger := logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed")
	} else {
		logger.Debug("request rejected")
	}
	response.Error(c, status, message)
}
