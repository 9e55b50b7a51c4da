package dto

import (
	"time"

	"booklease/internal/microservices/http-api/repository"
)

// CreateRentalRequest: payload for renting a book
type CreateRentalRequest struct {
	BookID     int64 `json:"book_id" binding:"required,gt=0"`
	RentalDays int   `json:"rental_days" binding:"required,rentaltier"`
}

// ExtendRentalRequest: payload for extending a rental
type ExtendRentalRequest struct {
	ExtendDays int `json:"extend_days" binding:"required,rentaltier"`
}

type RentalCreatedResponse struct {
	RentalID    int64     `json:"rental_id"`
	BookTitle   string    `json:"book_title"`
	RentalStart time.Time `json:"rental_start"`
	RentalEnd   time.Time `json:"rental_end"`
	RentalDays  int       `json:"rental_days"`
	PricePaid   float64   `json:"price_paid"`
}

type RentalExtendedResponse struct {
	NewEndDate  time.Time `json:"new_end_date"`
	ExtendDays  int       `json:"extend_days"`
	ExtendPrice float64   `json:"extend_price"`
}

// RentalResponse is a rental row with book columns and the derived expiry flag.
type RentalResponse struct {
	repository.RentalDetail
	Expired bool `json:"expired"`
}

func NewRentalResponses(rows []repository.RentalDetail, now time.Time) []RentalResponse {
	out := make([]RentalResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, RentalResponse{RentalDetail: r, Expired: now.After(r.RentalEnd)})
	}
	return out
}

type RentalHistoryResponse struct {
	Rentals    []RentalResponse `json:"rentals"`
	Pagination Pagination       `json:"pagination"`
}

type RentalStatsResponse struct {
	TotalRentals  int64   `json:"total_rentals"`
	TotalSpent    float64 `json:"total_spent"`
	ActiveRentals int64   `json:"active_rentals"`
}
