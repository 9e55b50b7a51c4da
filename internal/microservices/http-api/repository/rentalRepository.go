package repository

import (
	"context"
	"fmt"
	"time"

	"booklease/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActiveStatuses are the rental statuses that count as live until rental_end.
var ActiveStatuses = []models.RentalStatus{models.RentalStatusActive, models.RentalStatusExtended}

// RentalDetail is a rental joined with the book columns shown in listings.
type RentalDetail struct {
	RentalID       int64               `json:"rental_id"`
	UserID         int64               `json:"user_id"`
	BookID         int64               `json:"book_id"`
	RentalStart    time.Time           `json:"rental_start"`
	RentalEnd      time.Time           `json:"rental_end"`
	RentalDays     int                 `json:"rental_days"`
	PricePaid      float64             `json:"price_paid"`
	Status         models.RentalStatus `json:"status"`
	ExtensionCount int                 `json:"extension_count"`
	CreatedAt      time.Time           `json:"created_at"`
	Title          string              `json:"title"`
	Author         string              `json:"author"`
	CoverImage     *string             `json:"cover_image,omitempty"`
	Category       string              `json:"category"`
}

type RentalStats struct {
	TotalRentals  int64   `json:"total_rentals"`
	TotalSpent    float64 `json:"total_spent"`
	ActiveRentals int64   `json:"active_rentals"`
}

// Extension is the delta applied to a locked rental row.
type Extension struct {
	NewEnd     time.Time
	ExtendDays int
	Price      float64
}

type RentalRepository interface {
	Create(ctx context.Context, rental *models.Rental) error
	GetOwned(ctx context.Context, rentalID, userID int64) (*models.Rental, error)
	GetOwnedForUpdate(ctx context.Context, rentalID, userID int64) (*models.Rental, error)
	ApplyExtension(ctx context.Context, rentalID int64, ext Extension) error
	ListActive(ctx context.Context, userID int64, since time.Time) ([]RentalDetail, error)
	ListByUser(ctx context.Context, userID int64, page, limit int) ([]RentalDetail, int64, error)
	Stats(ctx context.Context, userID int64, since time.Time) (*RentalStats, error)
}

type rentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) RentalRepository {
	return &rentalRepository{db: db}
}

const rentalDetailColumns = "rentals.id AS rental_id, rentals.user_id, rentals.book_id, rentals.rental_start, " +
	"rentals.rental_end, rentals.rental_days, rentals.price_paid, rentals.status, rentals.extension_count, " +
	"rentals.created_at, books.title, books.author, books.cover_image, books.category"

func (r *rentalRepository) Create(ctx context.Context, rental *models.Rental) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rental).Error; err != nil {
		return fmt.Errorf("create rental: %w", err)
	}
	return nil
}

// GetOwned returns gorm.ErrRecordNotFound when the rental belongs to another user.
func (r *rentalRepository) GetOwned(ctx context.Context, rentalID, userID int64) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", rentalID, userID).
		First(&rental).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) GetOwnedForUpdate(ctx context.Context, rentalID, userID int64) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", rentalID, userID).
		First(&rental).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) ApplyExtension(ctx context.Context, rentalID int64, ext Extension) error {
	res := r.db.WithContext(ctx).Model(&models.Rental{}).
		Where("id = ?", rentalID).
		UpdateColumns(map[string]any{
			"rental_end":      ext.NewEnd,
			"rental_days":     gorm.Expr("rental_days + ?", ext.ExtendDays),
			"price_paid":      gorm.Expr("price_paid + ?", ext.Price),
			"status":          models.RentalStatusExtended,
			"extension_count": gorm.Expr("extension_count + ?", 1),
		})
	if res.Error != nil {
		return fmt.Errorf("extend rental: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rentalRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("rentals").
		Select(rentalDetailColumns).
		Joins("JOIN books ON books.id = rentals.book_id")
}

func (r *rentalRepository) ListActive(ctx context.Context, userID int64, since time.Time) ([]RentalDetail, error) {
	out := []RentalDetail{}
	err := r.detailQuery(ctx).
		Where("rentals.user_id = ? AND rentals.status IN ? AND rentals.rental_end >= ?", userID, ActiveStatuses, since).
		Order("rentals.rental_end ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list active rentals: %w", err)
	}
	return out, nil
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID int64, page, limit int) ([]RentalDetail, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Rental{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count rentals: %w", err)
	}

	out := []RentalDetail{}
	err := r.detailQuery(ctx).
		Where("rentals.user_id = ?", userID).
		Order("rentals.created_at DESC").Order("rentals.id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals: %w", err)
	}
	return out, total, nil
}

func (r *rentalRepository) Stats(ctx context.Context, userID int64, since time.Time) (*RentalStats, error) {
	var stats RentalStats
	err := r.db.WithContext(ctx).Model(&models.Rental{}).
		Select("COUNT(*) AS total_rentals, COALESCE(SUM(price_paid), 0) AS total_spent, "+
			"COUNT(CASE WHEN status IN ? AND rental_end >= ? THEN 1 END) AS active_rentals", ActiveStatuses, since).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("rental stats: %w", err)
	}
	return &stats, nil
}
