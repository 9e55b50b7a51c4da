package repository

import (
	"context"
	"fmt"
	"strings"

	"booklease/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort keys accepted by List.
const (
	SortPopular   = "popular"
	SortRating    = "rating"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortNewest    = "newest"
)

var bookOrder = map[string]string{
	SortPopular:   "total_rentals DESC",
	SortRating:    "rating DESC",
	SortPriceLow:  "rental_price_7days ASC",
	SortPriceHigh: "rental_price_7days DESC",
	SortNewest:    "created_at DESC",
}

// BookFilter drives the catalog listing. Page and Limit are already clamped.
type BookFilter struct {
	Category string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, filter BookFilter) ([]models.Book, int64, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Popular(ctx context.Context, limit int) ([]models.Book, error)
	Count(ctx context.Context) (int64, error)
	IncrementTotalRentals(ctx context.Context, id int64) error
	UpdateRating(ctx context.Context, id int64, rating float64) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDForUpdate locks the book row until the surrounding transaction ends.
func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]models.Book, int64, error) {
	var list []models.Book
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Book{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)", p, p)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	order, ok := bookOrder[filter.Sort]
	if !ok {
		order = bookOrder[SortPopular]
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := q.Order(order).Order("id ASC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return list, total, nil
}

func (r *bookRepository) Categories(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	err := r.db.WithContext(ctx).Model(&models.Book{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *bookRepository) Popular(ctx context.Context, limit int) ([]models.Book, error) {
	var list []models.Book
	if err := r.db.WithContext(ctx).
		Order("total_rentals DESC").Order("id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("popular books: %w", err)
	}
	return list, nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&n).Error
	return n, err
}

// IncrementTotalRentals bumps the counter in SQL so concurrent rentals never lose an update.
func (r *bookRepository) IncrementTotalRentals(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("total_rentals", gorm.Expr("total_rentals + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment total_rentals: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	res := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("rating", rating)
	if res.Error != nil {
		return fmt.Errorf("update rating: %w", res.Error)
	}
	return nil
}
