package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// UsageRepository implements usage.Repository
type UsageRepository struct {
	c conn
}

// NewUsageRepository creates a new usage ledger repository
func NewUsageRepository(db *Database) usage.Repository {
	return &UsageRepository{c: db.conn()}
}

const ledgerColumns = `id, user_id, subscription_id, period_start, period_end, credits_limit, credits_used,
	weekly_plans_used, monthly_plans_used, created_at, updated_at`

// keyClause returns the WHERE clause addressing key. A paid ledger is
// identified by its subscription alone; it is reset in place each period.
func keyClause(key usage.Key) (string, []interface{}) {
	if key.IsFree() {
		return `user_id = ? AND subscription_id = 0 AND period_start = ?`,
			[]interface{}{key.UserID, key.Period.Start.Unix()}
	}
	return `subscription_id = ?`, []interface{}{key.SubscriptionID}
}

// Find returns the ledger for key
func (r *UsageRepository) Find(ctx context.Context, key usage.Key) (*usage.Ledger, error) {
	where, args := keyClause(key)
	query := `SELECT ` + ledgerColumns + ` FROM usage_ledgers WHERE ` + where

	l, err := scanLedger(r.c.queryRow(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Usage ledger")
	}
	if err != nil {
		return nil, errors.StoreUnavailable("Failed to get usage ledger", err)
	}
	return l, nil
}

// GetByID retrieves a ledger by ID
func (r *UsageRepository) GetByID(ctx context.Context, id int64) (*usage.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM usage_ledgers WHERE id = ?`

	l, err := scanLedger(r.c.queryRow(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Usage ledger")
	}
	if err != nil {
		return nil, errors.StoreUnavailable("Failed to get usage ledger", err)
	}
	return l, nil
}

// GetOrCreate returns the ledger for key, inserting a fresh one if missing.
// A concurrent insert for the same key is absorbed by the unique indexes.
func (r *UsageRepository) GetOrCreate(ctx context.Context, key usage.Key, limit int64, now time.Time) (*usage.Ledger, error) {
	if err := key.Period.Validate(); err != nil {
		return nil, errors.Internal("Invalid ledger period", err)
	}
	if err := r.insertFresh(ctx, key, limit, now); err != nil {
		return nil, err
	}
	return r.Find(ctx, key)
}

// Reserve applies charge in a single conditional statement. It reports false
// when the charge would push credits_used past credits_limit.
func (r *UsageRepository) Reserve(ctx context.Context, ledgerID int64, charge usage.Charge, now time.Time) (bool, error) {
	query := `
		UPDATE usage_ledgers
		SET credits_used = credits_used + ?,
			weekly_plans_used = weekly_plans_used + ?,
			monthly_plans_used = monthly_plans_used + ?,
			updated_at = ?
		WHERE id = ? AND credits_used + ? <= credits_limit
	`

	result, err := r.c.exec(ctx, query,
		charge.Credits, charge.WeeklyPlans, charge.MonthlyPlans, now.Unix(), ledgerID, charge.Credits,
	)
	if err != nil {
		return false, errors.StoreUnavailable("Failed to reserve credits", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.StoreUnavailable("Failed to get affected rows", err)
	}
	return rows == 1, nil
}

// Reset writes a fresh grant for key: limit credits, nothing used, counters
// zeroed, period taken from key. Insert-then-update keeps it idempotent.
func (r *UsageRepository) Reset(ctx context.Context, key usage.Key, limit int64, now time.Time) (*usage.Ledger, error) {
	if err := key.Period.Validate(); err != nil {
		return nil, errors.Internal("Invalid ledger period", err)
	}
	if err := r.insertFresh(ctx, key, limit, now); err != nil {
		return nil, err
	}

	where, whereArgs := keyClause(key)
	query := `
		UPDATE usage_ledgers
		SET user_id = ?, period_start = ?, period_end = ?, credits_limit = ?,
			credits_used = 0, weekly_plans_used = 0, monthly_plans_used = 0, updated_at = ?
		WHERE ` + where

	args := append([]interface{}{
		key.UserID, key.Period.Start.Unix(), key.Period.End.Unix(), limit, now.Unix(),
	}, whereArgs...)
	if _, err := r.c.exec(ctx, query, args...); err != nil {
		return nil, errors.StoreUnavailable("Failed to reset usage ledger", err)
	}

	return r.Find(ctx, key)
}

func (r *UsageRepository) insertFresh(ctx context.Context, key usage.Key, limit int64, now time.Time) error {
	query := `
		INSERT INTO usage_ledgers (user_id, subscription_id, period_start, period_end, credits_limit,
			credits_used, weekly_plans_used, monthly_plans_used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, 0, ?, ?)
		ON CONFLICT DO NOTHING
	`

	_, err := r.c.exec(ctx, query,
		key.UserID, key.SubscriptionID, key.Period.Start.Unix(), key.Period.End.Unix(), limit, now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.StoreUnavailable("Failed to create usage ledger", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLedger(row rowScanner) (*usage.Ledger, error) {
	var l usage.Ledger
	var start, end, createdAt, updatedAt int64

	err := row.Scan(
		&l.ID, &l.UserID, &l.SubscriptionID, &start, &end, &l.CreditsLimit, &l.CreditsUsed,
		&l.WeeklyPlansUsed, &l.MonthlyPlansUsed, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Period = usage.Period{Start: time.Unix(start, 0).UTC(), End: time.Unix(end, 0).UTC()}
	l.CreatedAt = time.Unix(createdAt, 0).UTC()
	l.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &l, nil
}
