package models

import "time"

const (
	PaymentMethodCreditCard = "credit_card"
	PaymentStatusCompleted  = "completed"
)

// Payment rows are append-only; one per rental creation or extension.
type Payment struct {
	ID             int64     `json:"payment_id" gorm:"primaryKey;autoIncrement"`
	RentalID       int64     `json:"rental_id" gorm:"not null;index"`
	UserID         int64     `json:"user_id" gorm:"not null;index"`
	Amount         float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod  string    `json:"payment_method" gorm:"size:50;not null"`
	PaymentStatus  string    `json:"payment_status" gorm:"size:20;not null"`
	TransactionRef string    `json:"transaction_ref" gorm:"size:36;uniqueIndex;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`

	Rental Rental `json:"-" gorm:"foreignKey:RentalID;constraint:OnDelete:CASCADE;"`
}

func (Payment) TableName() string {
	return "payments"
}
