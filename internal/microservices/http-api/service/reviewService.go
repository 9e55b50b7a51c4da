package service

import (
	"context"
	"log/slog"

	"booklease/internal/cache"
	"booklease/internal/microservices/http-api/dto"
	"booklease/internal/microservices/http-api/models"
	"booklease/internal/microservices/http-api/repository"
)

type ReviewService interface {
	AddReview(ctx context.Context, userID, bookID int64, rating int, comment *string) (*dto.ReviewCreatedResponse, error)
	ListReviews(ctx context.Context, bookID int64) ([]repository.ReviewDetail, error)
}

type reviewService struct {
	txm    repository.TransactionManager
	repos  repository.RepositoryFactory
	cache  cache.Cache
	logger *slog.Logger
}

func NewReviewService(txm repository.TransactionManager, repos repository.RepositoryFactory, c cache.Cache, logger *slog.Logger) ReviewService {
	if c == nil {
		c = cache.NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &reviewService{txm: txm, repos: repos, cache: c, logger: logger}
}

// AddReview stores the user's only review of a book and recomputes the
// book's mean rating from every review row.
func (s *reviewService) AddReview(ctx context.Context, userID, bookID int64, rating int, comment *string) (*dto.ReviewCreatedResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	var resp *dto.ReviewCreatedResponse
	err := s.txm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		// the book row lock orders concurrent recomputes for this book
		if _, err := repos.Books().GetByIDForUpdate(ctx, bookID); err != nil {
			if repository.IsNotFound(err) {
				return ErrBookNotFound
			}
			return err
		}

		review := &models.Review{
			UserID:  userID,
			BookID:  bookID,
			Rating:  rating,
			Comment: comment,
		}
		if err := repos.Reviews().Create(ctx, review); err != nil {
			if repository.IsUniqueConstraintViolation(err) {
				return ErrDuplicateReview
			}
			return err
		}

		avg, err := repos.Reviews().AverageRating(ctx, bookID)
		if err != nil {
			return err
		}
		if err := repos.Books().UpdateRating(ctx, bookID, avg); err != nil {
			return err
		}

		resp = &dto.ReviewCreatedResponse{
			ReviewID:   review.ID,
			BookID:     bookID,
			Rating:     rating,
			BookRating: avg,
		}
		return nil
	})
	if err != nil {
		err = classify(err)
		if KindOf(err) == KindTransactionFailed {
			s.logger.ErrorContext(ctx, "add_review_failed", "user_id", userID, "book_id", bookID, "error", err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "review_added", "user_id", userID, "book_id", bookID, "rating", rating)
	if err := s.cache.DeletePrefix(ctx, cache.PopularPrefix); err != nil {
		s.logger.WarnContext(ctx, "popular_cache_invalidate_failed", "error", err)
	}
	return resp, nil
}

func (s *reviewService) ListReviews(ctx context.Context, bookID int64) ([]repository.ReviewDetail, error) {
	reviews, err := s.repos.Reviews().ListByBook(ctx, bookID)
	if err != nil {
		return nil, classify(err)
	}
	return reviews, nil
}
