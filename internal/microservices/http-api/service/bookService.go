package service

import (
	"context"
	"log/slog"
	"time"

	"booklease/internal/cache"
	"booklease/internal/microservices/http-api/dto"
	"booklease/internal/microservices/http-api/models"
	"booklease/internal/microservices/http-api/repository"
)

const (
	defaultBookLimit    = 12
	maxBookLimit        = 100
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

type BookService interface {
	ListBooks(ctx context.Context, q dto.BookListQuery) (*dto.BookListResponse, error)
	GetBook(ctx context.Context, id int64) (*dto.BookDetailResponse, error)
	Categories(ctx context.Context) ([]repository.CategoryCount, error)
	Popular(ctx context.Context, limit int) ([]models.Book, error)
}

type bookService struct {
	repos    repository.RepositoryFactory
	reviews  ReviewService
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewBookService(repos repository.RepositoryFactory, reviews ReviewService, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) BookService {
	if c == nil {
		c = cache.NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bookService{repos: repos, reviews: reviews, cache: c, cacheTTL: cacheTTL, logger: logger}
}

func (s *bookService) ListBooks(ctx context.Context, q dto.BookListQuery) (*dto.BookListResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultBookLimit
	}
	if q.Limit > maxBookLimit {
		q.Limit = maxBookLimit
	}

	books, total, err := s.repos.Books().List(ctx, repository.BookFilter{
		Category: q.Category,
		Search:   q.Search,
		Sort:     q.Sort,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, classify(err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return &dto.BookListResponse{
		Books:      books,
		Pagination: dto.NewPagination(total, q.Page, q.Limit),
	}, nil
}

func (s *bookService) GetBook(ctx context.Context, id int64) (*dto.BookDetailResponse, error) {
	book, err := s.repos.Books().GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, classify(err)
	}
	reviews, err := s.reviews.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BookDetailResponse{Book: book, Reviews: reviews}, nil
}

func (s *bookService) Categories(ctx context.Context) ([]repository.CategoryCount, error) {
	var cached []repository.CategoryCount
	if s.cacheGet(ctx, cache.CategoriesKey, &cached) {
		return cached, nil
	}

	cats, err := s.repos.Books().Categories(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if cats == nil {
		cats = []repository.CategoryCount{}
	}
	s.cacheSet(ctx, cache.CategoriesKey, cats)
	return cats, nil
}

func (s *bookService) Popular(ctx context.Context, limit int) ([]models.Book, error) {
	if limit < 1 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	key := cache.PopularKey(limit)
	var cached []models.Book
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	books, err := s.repos.Books().Popular(ctx, limit)
	if err != nil {
		return nil, classify(err)
	}
	if books == nil {
		books = []models.Book{}
	}
	s.cacheSet(ctx, key, books)
	return books, nil
}

// cache failures degrade to a database read

func (s *bookService) cacheGet(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.logger.WarnContext(ctx, "cache_get_failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *bookService) cacheSet(ctx context.Context, key string, v any) {
	if err := s.cache.SetJSON(ctx, key, v, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache_set_failed", "key", key, "error", err)
	}
}
