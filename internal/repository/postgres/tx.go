package postgres

import (
	"context"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// TxStore implements payment.Store on top of a database transaction
type TxStore struct {
	db *Database
}

// NewTxStore creates a transactional store
func NewTxStore(db *Database) payment.Store {
	return &TxStore{db: db}
}

// WithinTx runs fn with repositories bound to one transaction. Any error from
// fn, or a panic, rolls the transaction back.
func (s *TxStore) WithinTx(ctx context.Context, fn func(subs subscription.Repository, ledgers usage.Repository) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreUnavailable("Failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	c := conn{q: tx, driver: s.db.Driver}
	if err = fn(&SubscriptionRepository{c: c}, &UsageRepository{c: c}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.StoreUnavailable("Failed to commit transaction", err)
	}
	return nil
}
