package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"booklease/internal/microservices/http-api/middleware"
	"booklease/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// respondError writes the client-safe part of err. Server-side failures are
// logged with their cause; the client only sees the generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	ae, ok := service.AsAppError(err)
	if !ok {
		ae = service.ErrTransactionFailed.Wrap(err)
	}

	status := ae.HTTPStatus()
	if status >= http.StatusInternalServerError {
		attrs := []any{
			"path", c.FullPath(),
			"req_id", middleware.GetRequestID(c),
			"code", ae.Code,
			"error", err,
		}
		if userID, ok := middleware.UserID(c); ok {
			attrs = append(attrs, "user_id", userID)
		}
		logger.ErrorContext(c.Request.Context(), "request_failed", attrs...)
	}
	c.JSON(status, Envelope{Success: false, Message: ae.Message})
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidInput(message string) *service.AppError {
	e := *service.ErrInvalidInput
	e.Message = message
	return &e
}

// currentUser reads the id set by the auth middleware. Routes that call it are
// always mounted behind that middleware.
func currentUser(c *gin.Context, logger *slog.Logger) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, logger, service.ErrInvalidToken)
	}
	return userID, ok
}
