package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pratik-mahalle/mealplanner/internal/domain/generation"
	"github.com/pratik-mahalle/mealplanner/internal/domain/mealplan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// MockPlanRepository is a mock implementation of plan.Repository
type MockPlanRepository struct {
	mu        sync.Mutex
	Plans     map[string]*plan.Plan
	Skipped   []error
	ListError error
}

func NewMockPlanRepository(plans ...*plan.Plan) *MockPlanRepository {
	m := &MockPlanRepository{Plans: make(map[string]*plan.Plan)}
	for _, p := range plans {
		m.Plans[p.ID] = p
	}
	return m
}

func (m *MockPlanRepository) List(ctx context.Context) ([]*plan.Plan, []error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, nil, m.ListError
	}
	var result []*plan.Plan
	for _, p := range m.Plans {
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PriceMinor < result[j].PriceMinor })
	return result, m.Skipped, nil
}

func (m *MockPlanRepository) Upsert(ctx context.Context, p *plan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.Plans[p.ID] = &cp
	return nil
}

// MockGateway is a payment.Gateway that records every call
type MockGateway struct {
	Secret   string
	Payments map[string]*payment.Payment
	FetchErr error

	fetchCalls atomic.Int64
}

func NewMockGateway(secret string) *MockGateway {
	return &MockGateway{Secret: secret, Payments: make(map[string]*payment.Payment)}
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) ComputeSignature(orderID, paymentID string) string {
	return payment.Signature(m.Secret, orderID, paymentID)
}

func (m *MockGateway) FetchPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	m.fetchCalls.Add(1)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	p, ok := m.Payments[paymentID]
	if !ok {
		return nil, errors.ProviderAPIError("mock", fmt.Errorf("payment %s not found", paymentID))
	}
	cp := *p
	return &cp, nil
}

// FetchCalls returns how many times FetchPayment was invoked
func (m *MockGateway) FetchCalls() int64 {
	return m.fetchCalls.Load()
}

// Sign returns a valid assertion for a stored payment
func (m *MockGateway) Sign(orderID, paymentID, planID string) payment.Assertion {
	return payment.Assertion{
		OrderID:       orderID,
		PaymentID:     paymentID,
		Signature:     m.ComputeSignature(orderID, paymentID),
		ClaimedPlanID: planID,
	}
}

// SpyStore wraps a payment.Store and counts transactions. When Err is set
// it fails without opening one.
type SpyStore struct {
	Inner payment.Store
	Err   error

	calls atomic.Int64
}

func (s *SpyStore) WithinTx(ctx context.Context, fn func(subs subscription.Repository, ledgers usage.Repository) error) error {
	s.calls.Add(1)
	if s.Err != nil {
		return s.Err
	}
	return s.Inner.WithinTx(ctx, fn)
}

// Calls returns how many transactions were requested
func (s *SpyStore) Calls() int64 {
	return s.calls.Load()
}

// MockGenerator is a generation.Generator returning canned content
type MockGenerator struct {
	Content string
	Tokens  int
	Err     error

	calls atomic.Int64
}

func (m *MockGenerator) Provider() string { return "mock" }

func (m *MockGenerator) Generate(ctx context.Context, profile generation.Profile, opts generation.Options) (*generation.Result, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &generation.Result{
		Content:    m.Content,
		TokenUsage: generation.TokenUsage{TotalTokens: m.Tokens, CompletionTokens: m.Tokens},
	}, nil
}

// Calls returns how many generations ran
func (m *MockGenerator) Calls() int64 {
	return m.calls.Load()
}

// MockMealPlanRepository is a mock implementation of mealplan.Repository
type MockMealPlanRepository struct {
	mu          sync.Mutex
	Plans       map[int64]*mealplan.MealPlan
	NextID      int64
	CreateError error
}

func NewMockMealPlanRepository() *MockMealPlanRepository {
	return &MockMealPlanRepository{Plans: make(map[int64]*mealplan.MealPlan), NextID: 1}
}

func (m *MockMealPlanRepository) Create(ctx context.Context, p *mealplan.MealPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	p.ID = m.NextID
	m.NextID++
	m.Plans[p.ID] = p
	return nil
}

func (m *MockMealPlanRepository) GetByID(ctx context.Context, userID string, id int64) (*mealplan.MealPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Plans[id]
	if !ok || p.UserID != userID {
		return nil, errors.NotFound("Meal plan")
	}
	return p, nil
}

func (m *MockMealPlanRepository) List(ctx context.Context, filter mealplan.Filter, limit, offset int) ([]*mealplan.MealPlan, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*mealplan.MealPlan
	for _, p := range m.Plans {
		if p.UserID != filter.UserID {
			continue
		}
		if filter.Kind != "" && p.Kind != filter.Kind {
			continue
		}
		if filter.CreatedAfter != nil && !p.CreatedAt.After(*filter.CreatedAfter) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}
