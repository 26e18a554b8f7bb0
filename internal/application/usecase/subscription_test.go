package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/cache"
	"lingoplatform/internal/infrastructure/repository"
)

type stubGateway struct {
	orderID   string
	signature bool
	status    string
}

func (g *stubGateway) CreateOrder(amount int, currency string, notes map[string]interface{}) (string, error) {
	return g.orderID, nil
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return g.signature
}

func (g *stubGateway) FetchPayment(paymentID string) (string, error) {
	return g.status, nil
}

type memOrders struct {
	orders map[string]cache.PendingOrder
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]cache.PendingOrder{}}
}

func (m *memOrders) Save(ctx context.Context, orderID string, order cache.PendingOrder) error {
	m.orders[orderID] = order
	return nil
}

func (m *memOrders) Get(ctx context.Context, orderID string) (*cache.PendingOrder, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (m *memOrders) Delete(ctx context.Context, orderID string) error {
	delete(m.orders, orderID)
	return nil
}

func seedPlans(t *testing.T, db *gorm.DB) {
	t.Helper()
	repo := repository.NewSubscriptionRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.CreatePlan(ctx, &domain.SubscriptionPlan{
		ID: uuid.New(), Name: domain.PlanBasic, Price: 49900, Currency: "INR", DurationDays: 30,
	}))
	require.NoError(t, repo.CreatePlan(ctx, &domain.SubscriptionPlan{
		ID: uuid.New(), Name: domain.PlanPro, Price: 99900, Currency: "INR", DurationDays: 30,
	}))
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&domain.SubscriptionTransaction{}).Count(&count).Error)
	return count
}

func TestCreateOrderRemembersContext(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedPlans(t, db)

	orders := newMemOrders()
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db),
		&stubGateway{orderID: "order_1"}, orders, &fixedClock{now: testDay}, testLogger())

	info, err := svc.CreateOrder(context.Background(), userID, domain.PlanPro)
	require.NoError(t, err)
	require.Equal(t, "order_1", info.OrderID)
	require.Equal(t, 99900, info.Amount)

	pending := orders.orders["order_1"]
	require.Equal(t, userID.String(), pending.UserID)
	require.Equal(t, domain.PlanPro, pending.Plan)
}

func TestCreateOrderUnknownPlan(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedPlans(t, db)

	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db),
		&stubGateway{orderID: "order_1"}, newMemOrders(), &fixedClock{now: testDay}, testLogger())

	_, err := svc.CreateOrder(context.Background(), userID, "platinum")
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestVerifyBadSignatureWritesNothing(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedPlans(t, db)

	orders := newMemOrders()
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db),
		&stubGateway{orderID: "order_1", signature: false, status: "captured"},
		orders, &fixedClock{now: testDay}, testLogger())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, userID, domain.PlanPro)
	require.NoError(t, err)

	_, err = svc.VerifyAndActivate(ctx, userID, "order_1", "pay_1", "forged")
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	// ни подписки, ни строки в журнале, план не тронут
	require.Zero(t, countTransactions(t, db))
	require.Equal(t, domain.PlanFree, profileOf(t, db, userID).CurrentPlan)
}

func TestVerifyRequiresCapturedPayment(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedPlans(t, db)

	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db),
		&stubGateway{orderID: "order_1", signature: true, status: "failed"},
		newMemOrders(), &fixedClock{now: testDay}, testLogger())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, userID, domain.PlanBasic)
	require.NoError(t, err)

	_, err = svc.VerifyAndActivate(ctx, userID, "order_1", "pay_1", "sig")
	require.ErrorIs(t, err, domain.ErrInvalidState)
	require.Zero(t, countTransactions(t, db))
}

func TestVerifyActivatesSubscription(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedPlans(t, db)

	clock := &fixedClock{now: testDay}
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db),
		&stubGateway{orderID: "order_1", signature: true, status: "captured"},
		newMemOrders(), clock, testLogger())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, userID, domain.PlanPro)
	require.NoError(t, err)

	sub, err := svc.VerifyAndActivate(ctx, userID, "order_1", "pay_1", "sig")
	require.NoError(t, err)
	require.Equal(t, domain.PlanPro, sub.Plan)
	require.True(t, sub.Active(clock.Now()))
	require.Equal(t, testDay.AddDate(0, 0, 30), sub.EndDate)

	require.Equal(t, domain.PlanPro, profileOf(t, db, userID).CurrentPlan)
	require.Equal(t, int64(1), countTransactions(t, db))
}

func TestVerifyDuplicatePaymentID(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedPlans(t, db)

	orders := newMemOrders()
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db),
		&stubGateway{orderID: "order_1", signature: true, status: "captured"},
		orders, &fixedClock{now: testDay}, testLogger())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, userID, domain.PlanPro)
	require.NoError(t, err)
	_, err = svc.VerifyAndActivate(ctx, userID, "order_1", "pay_1", "sig")
	require.NoError(t, err)

	// повтор callback'а с тем же payment_id
	require.NoError(t, orders.Save(ctx, "order_1", cache.PendingOrder{
		UserID: userID.String(), Plan: domain.PlanPro, Amount: 99900, Currency: "INR",
	}))
	_, err = svc.VerifyAndActivate(ctx, userID, "order_1", "pay_1", "sig")
	require.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	require.Equal(t, int64(1), countTransactions(t, db))
}
