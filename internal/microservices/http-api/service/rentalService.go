package service

import (
	"context"
	"log/slog"
	"time"

	"booklease/internal/cache"
	"booklease/internal/events"
	"booklease/internal/microservices/http-api/dto"
	"booklease/internal/microservices/http-api/models"
	"booklease/internal/microservices/http-api/repository"

	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type RentalService interface {
	CreateRental(ctx context.Context, userID, bookID int64, days int) (*dto.RentalCreatedResponse, error)
	ExtendRental(ctx context.Context, userID, rentalID int64, extendDays int) (*dto.RentalExtendedResponse, error)
	GetActiveRentals(ctx context.Context, userID int64) ([]dto.RentalResponse, error)
	GetRentalHistory(ctx context.Context, userID int64, page, limit int) (*dto.RentalHistoryResponse, error)
	GetStats(ctx context.Context, userID int64) (*dto.RentalStatsResponse, error)
	GetRentalPayments(ctx context.Context, userID, rentalID int64) ([]models.Payment, error)
}

// RentalPolicy caps extensions. Zero values mean unlimited.
type RentalPolicy struct {
	MaxExtensions int
	MaxTotalDays  int
}

func (p RentalPolicy) allows(r *models.Rental, extendDays int) bool {
	if p.MaxExtensions > 0 && r.ExtensionCount >= p.MaxExtensions {
		return false
	}
	if p.MaxTotalDays > 0 && r.RentalDays+extendDays > p.MaxTotalDays {
		return false
	}
	return true
}

// RentalServiceDeps groups the collaborators of the rental ledger.
// Publisher, Cache and Now are optional.
type RentalServiceDeps struct {
	TxManager repository.TransactionManager
	Repos     repository.RepositoryFactory
	Publisher events.Publisher
	Cache     cache.Cache
	Policy    RentalPolicy
	Logger    *slog.Logger
	Now       func() time.Time
}

type rentalService struct {
	txm       repository.TransactionManager
	repos     repository.RepositoryFactory
	publisher events.Publisher
	cache     cache.Cache
	policy    RentalPolicy
	logger    *slog.Logger
	now       func() time.Time
}

func NewRentalService(deps RentalServiceDeps) RentalService {
	s := &rentalService{
		txm:       deps.TxManager,
		repos:     deps.Repos,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		policy:    deps.Policy,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.cache == nil {
		s.cache = cache.NopCache{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func newPayment(rentalID, userID int64, amount float64) *models.Payment {
	return &models.Payment{
		RentalID:       rentalID,
		UserID:         userID,
		Amount:         amount,
		PaymentMethod:  models.PaymentMethodCreditCard,
		PaymentStatus:  models.PaymentStatusCompleted,
		TransactionRef: uuid.NewString(),
	}
}

// CreateRental charges the tier price and records rental, payment and the
// book's rental counter in one transaction.
func (s *rentalService) CreateRental(ctx context.Context, userID, bookID int64, days int) (*dto.RentalCreatedResponse, error) {
	if !IsRentalTier(days) {
		return nil, ErrInvalidDuration
	}

	now := s.now()
	var resp *dto.RentalCreatedResponse
	var rental *models.Rental

	err := s.txm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		book, err := repos.Books().GetByID(ctx, bookID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrBookNotFound
			}
			return err
		}

		price, err := ResolvePrice(book, days)
		if err != nil {
			return err
		}

		rental = &models.Rental{
			UserID:      userID,
			BookID:      bookID,
			RentalStart: now,
			RentalEnd:   now.AddDate(0, 0, days),
			RentalDays:  days,
			PricePaid:   price,
			Status:      models.RentalStatusActive,
		}
		if err := repos.Rentals().Create(ctx, rental); err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, newPayment(rental.ID, userID, price)); err != nil {
			return err
		}
		if err := repos.Books().IncrementTotalRentals(ctx, bookID); err != nil {
			return err
		}

		resp = &dto.RentalCreatedResponse{
			RentalID:    rental.ID,
			BookTitle:   book.Title,
			RentalStart: rental.RentalStart,
			RentalEnd:   rental.RentalEnd,
			RentalDays:  rental.RentalDays,
			PricePaid:   rental.PricePaid,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "create_rental", userID, err)
	}

	s.logger.InfoContext(ctx, "rental_created", "rental_id", resp.RentalID, "user_id", userID, "book_id", bookID, "days", days)
	s.afterCommit(ctx, events.RentalEvent{
		Type:       events.RentalCreated,
		RentalID:   rental.ID,
		UserID:     userID,
		BookID:     bookID,
		BookTitle:  resp.BookTitle,
		Days:       days,
		Amount:     resp.PricePaid,
		PricePaid:  resp.PricePaid,
		RentalEnd:  resp.RentalEnd,
		OccurredAt: now,
	}, true)
	return resp, nil
}

// ExtendRental pushes rental_end out by extendDays at the book's current tier
// price. The rental row stays locked for the whole transaction.
func (s *rentalService) ExtendRental(ctx context.Context, userID, rentalID int64, extendDays int) (*dto.RentalExtendedResponse, error) {
	if !IsRentalTier(extendDays) {
		return nil, ErrInvalidDuration
	}

	var resp *dto.RentalExtendedResponse
	var ev events.RentalEvent

	err := s.txm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		rental, err := repos.Rentals().GetOwnedForUpdate(ctx, rentalID, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrRentalNotFound
			}
			return err
		}
		if !s.policy.allows(rental, extendDays) {
			return ErrExtensionLimit
		}

		book, err := repos.Books().GetByID(ctx, rental.BookID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrBookNotFound
			}
			return err
		}

		price, err := ResolvePrice(book, extendDays)
		if err != nil {
			return err
		}

		newEnd := rental.RentalEnd.AddDate(0, 0, extendDays)
		if err := repos.Rentals().ApplyExtension(ctx, rental.ID, repository.Extension{
			NewEnd:     newEnd,
			ExtendDays: extendDays,
			Price:      price,
		}); err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, newPayment(rental.ID, userID, price)); err != nil {
			return err
		}

		resp = &dto.RentalExtendedResponse{
			NewEndDate:  newEnd,
			ExtendDays:  extendDays,
			ExtendPrice: price,
		}
		ev = events.RentalEvent{
			Type:       events.RentalExtended,
			RentalID:   rental.ID,
			UserID:     userID,
			BookID:     rental.BookID,
			BookTitle:  book.Title,
			Days:       extendDays,
			Amount:     price,
			PricePaid:  rental.PricePaid + price,
			RentalEnd:  newEnd,
			OccurredAt: s.now(),
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "extend_rental", userID, err)
	}

	s.logger.InfoContext(ctx, "rental_extended", "rental_id", rentalID, "user_id", userID, "extend_days", extendDays)
	// extensions leave total_rentals alone, so the popular list stays valid
	s.afterCommit(ctx, ev, false)
	return resp, nil
}

// startOfToday is the cut-off for "still active": rental_end on or after it.
func (s *rentalService) startOfToday() time.Time {
	now := s.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func (s *rentalService) GetActiveRentals(ctx context.Context, userID int64) ([]dto.RentalResponse, error) {
	rows, err := s.repos.Rentals().ListActive(ctx, userID, s.startOfToday())
	if err != nil {
		return nil, s.fail(ctx, "list_active_rentals", userID, err)
	}
	return dto.NewRentalResponses(rows, s.now()), nil
}

func (s *rentalService) GetRentalHistory(ctx context.Context, userID int64, page, limit int) (*dto.RentalHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, total, err := s.repos.Rentals().ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, s.fail(ctx, "rental_history", userID, err)
	}
	return &dto.RentalHistoryResponse{
		Rentals:    dto.NewRentalResponses(rows, s.now()),
		Pagination: dto.NewPagination(total, page, limit),
	}, nil
}

func (s *rentalService) GetStats(ctx context.Context, userID int64) (*dto.RentalStatsResponse, error) {
	stats, err := s.repos.Rentals().Stats(ctx, userID, s.startOfToday())
	if err != nil {
		return nil, s.fail(ctx, "rental_stats", userID, err)
	}
	return &dto.RentalStatsResponse{
		TotalRentals:  stats.TotalRentals,
		TotalSpent:    stats.TotalSpent,
		ActiveRentals: stats.ActiveRentals,
	}, nil
}

func (s *rentalService) GetRentalPayments(ctx context.Context, userID, rentalID int64) ([]models.Payment, error) {
	if _, err := s.repos.Rentals().GetOwned(ctx, rentalID, userID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrRentalNotFound
		}
		return nil, s.fail(ctx, "rental_payments", userID, err)
	}
	payments, err := s.repos.Payments().ListByRental(ctx, rentalID)
	if err != nil {
		return nil, s.fail(ctx, "rental_payments", userID, err)
	}
	return payments, nil
}

// fail classifies err and logs the ones that are not the caller's fault.
func (s *rentalService) fail(ctx context.Context, op string, userID int64, err error) error {
	err = classify(err)
	if KindOf(err) == KindTransactionFailed {
		s.logger.ErrorContext(ctx, op+"_failed", "user_id", userID, "error", err)
	}
	return err
}

// afterCommit runs the side effects that must not change the outcome.
func (s *rentalService) afterCommit(ctx context.Context, ev events.RentalEvent, invalidatePopular bool) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "rental_event_publish_failed", "type", ev.Type, "rental_id", ev.RentalID, "error", err)
	}
	if invalidatePopular {
		if err := s.cache.DeletePrefix(ctx, cache.PopularPrefix); err != nil {
			s.logger.WarnContext(ctx, "popular_cache_invalidate_failed", "error", err)
		}
	}
}
