package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RepositoryFactory hands out repositories bound to one *gorm.DB, either the
// pool or a single transaction.
type RepositoryFactory interface {
	Books() BookRepository
	Rentals() RentalRepository
	Payments() PaymentRepository
	Reviews() ReviewRepository
	Users() UserRepository
}

// TransactionManager runs fn inside one database transaction. The transaction
// commits only if fn returns nil; errors and panics roll it back.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(repos RepositoryFactory) error) error
}

type gormRepositoryFactory struct {
	db *gorm.DB
}

// NewRepositoryFactory returns repositories that run against db directly.
func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormRepositoryFactory{db: db}
}

func (f *gormRepositoryFactory) Books() BookRepository       { return NewBookRepository(f.db) }
func (f *gormRepositoryFactory) Rentals() RentalRepository   { return NewRentalRepository(f.db) }
func (f *gormRepositoryFactory) Payments() PaymentRepository { return NewPaymentRepository(f.db) }
func (f *gormRepositoryFactory) Reviews() ReviewRepository   { return NewReviewRepository(f.db) }
func (f *gormRepositoryFactory) Users() UserRepository       { return NewUserRepository(f.db) }

type gormTransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTransactionManager{db: db}
}

func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repos RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormRepositoryFactory{db: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
