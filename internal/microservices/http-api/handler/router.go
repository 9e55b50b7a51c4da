package handler

import (
	"log/slog"
	"net/http"

	"booklease/internal/microservices/http-api/middleware"
	"booklease/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// RouteGuards are the per-route middlewares handlers attach.
type RouteGuards struct {
	Auth       gin.HandlerFunc
	WriteLimit gin.HandlerFunc
}

type RouterDeps struct {
	Logger      *slog.Logger
	CORSOrigins []string
	Auth        service.AuthService
	Rentals     service.RentalService
	Books       service.BookService
	Reviews     service.ReviewService
	Limiter     *middleware.UserRateLimiter
	Ping        Pinger
}

// NewRouter builds the gin engine with every API route under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.CORSOrigins))

	guards := RouteGuards{
		Auth:       middleware.AuthMiddleware(deps.Auth),
		WriteLimit: func(c *gin.Context) { c.Next() },
	}
	if deps.Limiter != nil {
		guards.WriteLimit = deps.Limiter.Middleware()
	}

	api := r.Group("/api")
	NewHealthHandler(deps.Ping, deps.Logger).RegisterRoutes(api)
	NewAuthHandler(deps.Auth, deps.Logger).RegisterRoutes(api, guards)
	NewBookHandler(deps.Books, deps.Reviews, deps.Logger).RegisterRoutes(api, guards)
	NewRentalHandler(deps.Rentals, deps.Logger).RegisterRoutes(api, guards)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Envelope{Success: false, Message: "route not found"})
	})
	return r
}
