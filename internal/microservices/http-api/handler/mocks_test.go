package handler_test

import (
	"context"

	"booklease/internal/microservices/http-api/dto"
	"booklease/internal/microservices/http-api/models"
	"booklease/internal/microservices/http-api/repository"
	"booklease/internal/microservices/http-api/service"

	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICES ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockAuthService) IssueToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

// ValidateToken knows two fixed tokens and skips the mock bookkeeping.
func (m *MockAuthService) ValidateToken(token string) (*service.Claims, error) {
	switch token {
	case "good":
		return &service.Claims{UserID: 1, Email: "reader@example.com"}, nil
	case "other":
		return &service.Claims{UserID: 2, Email: "other@example.com"}, nil
	}
	return nil, service.ErrInvalidToken
}

func (m *MockAuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CreateRental(ctx context.Context, userID, bookID int64, days int) (*dto.RentalCreatedResponse, error) {
	args := m.Called(ctx, userID, bookID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RentalCreatedResponse), args.Error(1)
}

func (m *MockRentalService) ExtendRental(ctx context.Context, userID, rentalID int64, extendDays int) (*dto.RentalExtendedResponse, error) {
	args := m.Called(ctx, userID, rentalID, extendDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RentalExtendedResponse), args.Error(1)
}

func (m *MockRentalService) GetActiveRentals(ctx context.Context, userID int64) ([]dto.RentalResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.RentalResponse), args.Error(1)
}

func (m *MockRentalService) GetRentalHistory(ctx context.Context, userID int64, page, limit int) (*dto.RentalHistoryResponse, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RentalHistoryResponse), args.Error(1)
}

func (m *MockRentalService) GetStats(ctx context.Context, userID int64) (*dto.RentalStatsResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RentalStatsResponse), args.Error(1)
}

func (m *MockRentalService) GetRentalPayments(ctx context.Context, userID, rentalID int64) ([]models.Payment, error) {
	args := m.Called(ctx, userID, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) ListBooks(ctx context.Context, q dto.BookListQuery) (*dto.BookListResponse, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookListResponse), args.Error(1)
}

func (m *MockBookService) GetBook(ctx context.Context, id int64) (*dto.BookDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookDetailResponse), args.Error(1)
}

func (m *MockBookService) Categories(ctx context.Context) ([]repository.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CategoryCount), args.Error(1)
}

func (m *MockBookService) Popular(ctx context.Context, limit int) ([]models.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) AddReview(ctx context.Context, userID, bookID int64, rating int, comment *string) (*dto.ReviewCreatedResponse, error) {
	args := m.Called(ctx, userID, bookID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewCreatedResponse), args.Error(1)
}

func (m *MockReviewService) ListReviews(ctx context.Context, bookID int64) ([]repository.ReviewDetail, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ReviewDetail), args.Error(1)
}
