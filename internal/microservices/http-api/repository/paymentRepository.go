package repository

import (
	"context"
	"fmt"

	"booklease/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByRental(ctx context.Context, rentalID int64) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// ListByRental returns the rental's payments oldest first.
func (r *paymentRepository) ListByRental(ctx context.Context, rentalID int64) ([]models.Payment, error) {
	list := []models.Payment{}
	if err := r.db.WithContext(ctx).
		Where("rental_id = ?", rentalID).
		Order("created_at ASC").Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}
