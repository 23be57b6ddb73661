package services

import (
	"context"
	"testing"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/internal/testutil"
)

const testSecret = "test-signing-secret"

// fixture wires the entitlement services over an in-memory database
type fixture struct {
	db       *postgres.Database
	catalog  *PlanCatalog
	subs     subscription.Repository
	ledgers  usage.Repository
	gateway  *testutil.MockGateway
	store    *testutil.SpyStore
	quota    quota.Service
	payments payment.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := logger.Nop()

	catalog := NewPlanCatalog(postgres.NewPlanRepository(db), log)
	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	subs := postgres.NewSubscriptionRepository(db)
	ledgers := postgres.NewUsageRepository(db)
	gateway := testutil.NewMockGateway(testSecret)
	store := &testutil.SpyStore{Inner: postgres.NewTxStore(db)}

	return &fixture{
		db:       db,
		catalog:  catalog,
		subs:     subs,
		ledgers:  ledgers,
		gateway:  gateway,
		store:    store,
		quota:    NewQuotaService(catalog, subs, ledgers, log),
		payments: NewReconciliationService(catalog, gateway, store, subs, log),
	}
}

// capture registers a captured payment for planID's price and returns a
// correctly signed assertion for it
func (f *fixture) capture(paymentID, orderID, planID string, amount int64) payment.Assertion {
	f.gateway.Payments[paymentID] = &payment.Payment{
		ID:       paymentID,
		OrderID:  orderID,
		Status:   payment.StatusCaptured,
		Amount:   amount,
		Currency: "INR",
	}
	return f.gateway.Sign(orderID, paymentID, planID)
}

func (f *fixture) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := f.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
