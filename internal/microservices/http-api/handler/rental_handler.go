package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"booklease/internal/microservices/http-api/dto"
	"booklease/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type RentalHandler struct {
	svc    service.RentalService
	logger *slog.Logger
}

func NewRentalHandler(svc service.RentalService, logger *slog.Logger) *RentalHandler {
	RegisterValidators()
	return &RentalHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the rental routes. Every route needs a signed-in user;
// writes also pass the rate limiter.
func (h *RentalHandler) RegisterRoutes(rg *gin.RouterGroup, guards RouteGuards) {
	rentals := rg.Group("/rentals", guards.Auth)
	rentals.POST("", guards.WriteLimit, h.Create)
	rentals.GET("/active", h.Active)
	rentals.GET("/history", h.History)
	rentals.GET("/stats", h.Stats)
	rentals.PUT("/:rental_id/extend", guards.WriteLimit, h.Extend)
	rentals.GET("/:rental_id/payments", h.Payments)
}

// Create rents a book for one of the fixed tiers
func (h *RentalHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.CreateRental(ctx, userID, req.BookID, req.RentalDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "Book rented successfully", resp)
}

// Extend pushes an owned rental's end date out by another tier
func (h *RentalHandler) Extend(c *gin.Context) {
	userID, ok := currentUser(c, h.logger)
	if !ok {
		return
	}

	rentalID, ok := pathID(c, "rental_id")
	if !ok {
		respondError(c, h.logger, service.ErrRentalNotFound)
		return
	}

	var req dto.ExtendRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.ExtendRental(ctx, userID, rentalID, req.ExtendDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Rental extended successfully", resp)
}

func (h *RentalHandler) Active(c *gin.Context) {
	userID, ok := currentUser(c, h.logger)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rentals, err := h.svc.GetActiveRentals(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", rentals)
}

func (h *RentalHandler) History(c *gin.Context) {
	userID, ok := currentUser(c, h.logger)
	if !ok {
		return
	}

	// bad numbers fall back to the defaults
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx, cancel := requestContext(c)
	defer cancel()

	history, err := h.svc.GetRentalHistory(ctx, userID, page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", history)
}

func (h *RentalHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c, h.logger)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.svc.GetStats(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", stats)
}

// Payments lists the charges recorded against one of the user's rentals
func (h *RentalHandler) Payments(c *gin.Context) {
	userID, ok := currentUser(c, h.logger)
	if !ok {
		return
	}

	rentalID, ok := pathID(c, "rental_id")
	if !ok {
		respondError(c, h.logger, service.ErrRentalNotFound)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payments, err := h.svc.GetRentalPayments(ctx, userID, rentalID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", payments)
}
