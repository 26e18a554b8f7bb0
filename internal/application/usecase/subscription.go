package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/cache"
	"lingoplatform/internal/infrastructure/repository"
)

// PaymentGateway — внешний платежный провайдер; в тестах — стаб.
type PaymentGateway interface {
	CreateOrder(amount int, currency string, notes map[string]interface{}) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
	FetchPayment(paymentID string) (string, error)
}

// PendingOrders хранит контекст неоплаченных ордеров между созданием
// и подтверждением.
type PendingOrders interface {
	Save(ctx context.Context, orderID string, order cache.PendingOrder) error
	Get(ctx context.Context, orderID string) (*cache.PendingOrder, error)
	Delete(ctx context.Context, orderID string) error
}

type OrderInfo struct {
	OrderID  string `json:"orderId"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Plan     string `json:"plan"`
}

type SubscriptionService struct {
	subs    *repository.SubscriptionRepository
	gateway PaymentGateway
	orders  PendingOrders
	clock   Clock
	log     *zap.SugaredLogger
}

func NewSubscriptionService(subs *repository.SubscriptionRepository, gateway PaymentGateway, orders PendingOrders, clock Clock, log *zap.SugaredLogger) *SubscriptionService {
	return &SubscriptionService{subs: subs, gateway: gateway, orders: orders, clock: clock, log: log}
}

// CreateOrder заводит платежный ордер на тариф и запоминает его контекст
// (кто и что покупает) до подтверждения оплаты.
func (s *SubscriptionService) CreateOrder(ctx context.Context, userID uuid.UUID, planName string) (*OrderInfo, error) {
	plan, err := s.subs.GetPlanByName(ctx, planName)
	if err != nil {
		return nil, err
	}

	orderID, err := s.gateway.CreateOrder(plan.Price, plan.Currency, map[string]interface{}{
		"user_id": userID.String(),
		"plan":    plan.Name,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, orderID, cache.PendingOrder{
		UserID:   userID.String(),
		Plan:     plan.Name,
		Amount:   plan.Price,
		Currency: plan.Currency,
	}); err != nil {
		return nil, err
	}

	s.log.Infow("payment order created", "user_id", userID, "plan", plan.Name, "order_id", orderID)
	return &OrderInfo{OrderID: orderID, Amount: plan.Price, Currency: plan.Currency, Plan: plan.Name}, nil
}

// VerifyAndActivate — callback после оплаты. Порядок жесткий: сначала
// подпись (фейк отбрасываем без единой записи в журнал), потом статус
// платежа у провайдера, и только на "captured" активируем подписку.
func (s *SubscriptionService) VerifyAndActivate(ctx context.Context, userID uuid.UUID, orderID, paymentID, signature string) (*domain.Subscription, error) {
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		s.log.Warnw("payment signature mismatch", "user_id", userID, "order_id", orderID)
		return nil, domain.ErrAccessDenied
	}

	pending, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if pending == nil || pending.UserID != userID.String() {
		return nil, fmt.Errorf("%w: unknown payment order", domain.ErrInvalidState)
	}

	status, err := s.gateway.FetchPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if status != "captured" {
		return nil, fmt.Errorf("%w: payment status is %q", domain.ErrInvalidState, status)
	}

	plan, err := s.subs.GetPlanByName(ctx, pending.Plan)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sub := &domain.Subscription{
		UserID:    userID,
		Plan:      plan.Name,
		Amount:    pending.Amount,
		Currency:  pending.Currency,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, plan.DurationDays),
		Status:    domain.SubscriptionActive,
		Features:  planFeatures(plan.Name),
	}
	txn := &domain.SubscriptionTransaction{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   orderID,
		PaymentID: paymentID,
		Plan:      plan.Name,
		Amount:    pending.Amount,
		Currency:  pending.Currency,
		Status:    status,
		CreatedAt: now,
	}
	if err := s.subs.Activate(ctx, sub, txn); err != nil {
		return nil, err
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		s.log.Warnw("failed to drop pending order", "order_id", orderID, "error", err)
	}

	s.log.Infow("subscription activated", "user_id", userID, "plan", plan.Name, "until", sub.EndDate)
	return sub, nil
}

func (s *SubscriptionService) Current(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	return s.subs.GetActive(ctx, userID)
}

func (s *SubscriptionService) Plans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	return s.subs.GetPlans(ctx)
}

func (s *SubscriptionService) Transactions(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionTransaction, error) {
	return s.subs.ListTransactions(ctx, userID)
}

func planFeatures(plan string) datatypes.JSON {
	switch plan {
	case domain.PlanPro:
		return datatypes.JSON(`{"chapters":"all","chat":true,"finalExam":true}`)
	case domain.PlanBasic:
		return datatypes.JSON(fmt.Sprintf(`{"chapters":%d,"chat":true,"finalExam":false}`, basicChapterLimit))
	default:
		return datatypes.JSON(`{}`)
	}
}
