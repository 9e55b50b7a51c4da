package repository

import (
	"context"
	"fmt"
	"time"

	"booklease/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewDetail is a review with the reviewer's display name.
type ReviewDetail struct {
	ReviewID  int64     `json:"review_id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	FullName  string    `json:"full_name"`
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	AverageRating(ctx context.Context, bookID int64) (float64, error)
	ListByBook(ctx context.Context, bookID int64) ([]ReviewDetail, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create fails with a unique violation when the user already reviewed the book.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
}

// AverageRating computes the mean over every review row of the book.
func (r *reviewRepository) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	var avg struct {
		Average float64
	}

	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average").
		Where("book_id = ?", bookID).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg.Average, nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID int64) ([]ReviewDetail, error) {
	out := []ReviewDetail{}
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id AS review_id, reviews.user_id, reviews.book_id, reviews.rating, reviews.comment, reviews.created_at, users.full_name").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.book_id = ?", bookID).
		Order("reviews.created_at DESC").Order("reviews.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}
