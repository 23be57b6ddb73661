package postgres_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/internal/testutil"
)

func newMockDB(t *testing.T) (*postgres.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return postgres.Wrap(db, "postgres"), mock
}

func TestTxStore_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := stderrors.New("boom")
	err := postgres.NewTxStore(db).WithinTx(context.Background(), func(subscription.Repository, usage.Repository) error {
		return boom
	})
	if !stderrors.Is(err, boom) {
		t.Errorf("WithinTx() error = %v, want %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTxStore_StoreUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(sqlmock.Sqlmock)
	}{
		{
			name: "begin fails",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin().WillReturnError(stderrors.New("connection refused"))
			},
		},
		{
			name: "commit fails",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit().WillReturnError(stderrors.New("serialization failure"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			err := postgres.NewTxStore(db).WithinTx(context.Background(), func(subscription.Repository, usage.Repository) error {
				return nil
			})
			if !errors.HasCode(err, errors.ErrCodeStoreUnavailable) {
				t.Errorf("WithinTx() error = %v, want STORE_UNAVAILABLE", err)
			}
		})
	}
}

func TestTxStore_RollbackLeavesNoRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	now := testutil.Time(t, "2026-03-14T10:00:00Z")

	err := postgres.NewTxStore(db).WithinTx(ctx, func(subs subscription.Repository, ledgers usage.Repository) error {
		s := &subscription.Subscription{
			UserID:               "user-1",
			PlanID:               "individual",
			Status:               subscription.StatusActive,
			BillingIntervalStart: now,
			BillingIntervalEnd:   now.Add(30 * 24 * time.Hour),
			UpdatedAt:            now,
		}
		if err := subs.Upsert(ctx, s); err != nil {
			return err
		}
		return stderrors.New("ledger write failed")
	})
	if err == nil {
		t.Fatal("WithinTx() error = nil, want failure")
	}

	if _, err := postgres.NewSubscriptionRepository(db).GetByUserID(ctx, "user-1"); !errors.IsNotFound(err) {
		t.Errorf("GetByUserID() error = %v, want NOT_FOUND after rollback", err)
	}
}

func TestUsageRepository_ReserveStoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE usage_ledgers").WillReturnError(stderrors.New("disk I/O error"))

	ok, err := postgres.NewUsageRepository(db).Reserve(context.Background(), 1, usage.Charge{Credits: 1}, time.Now())
	if ok {
		t.Error("Reserve() = true on store failure")
	}
	if !errors.HasCode(err, errors.ErrCodeStoreUnavailable) {
		t.Errorf("Reserve() error = %v, want STORE_UNAVAILABLE", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
