package models

import "time"

type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "active"
	RentalStatusExtended RentalStatus = "extended"
)

// Rental is never deleted. Expiry is not stored, see IsExpired.
type Rental struct {
	ID             int64        `json:"rental_id" gorm:"primaryKey;autoIncrement"`
	UserID         int64        `json:"user_id" gorm:"not null;index"`
	BookID         int64        `json:"book_id" gorm:"not null;index"`
	RentalStart    time.Time    `json:"rental_start" gorm:"not null"`
	RentalEnd      time.Time    `json:"rental_end" gorm:"not null;index"`
	RentalDays     int          `json:"rental_days" gorm:"not null"`
	PricePaid      float64      `json:"price_paid" gorm:"type:decimal(10,2);not null"`
	Status         RentalStatus `json:"status" gorm:"size:20;not null;default:'active'"`
	ExtensionCount int          `json:"extension_count" gorm:"not null;default:0"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book Book `json:"-" gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT;"`
}

func (Rental) TableName() string {
	return "rentals"
}

// IsExpired reports whether the rental term lapsed before now.
func (r *Rental) IsExpired(now time.Time) bool {
	return now.After(r.RentalEnd)
}
