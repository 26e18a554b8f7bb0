package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingoplatform/internal/domain"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetActive возвращает запись подписки юзера или nil, если ее нет.
// Истекла она или нет — решает Entitlement Resolver, не репозиторий.
func (r *SubscriptionRepository) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).First(&sub, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStore(err)
	}
	return &sub, nil
}

// Activate применяет оплаченную подписку: апсертит активную запись,
// дописывает строку в глобальный журнал и переключает план профиля —
// всё одной транзакцией. Журнал только растет, существующие строки
// никогда не апдейтятся; повторный payment_id упирается в уникальный
// индекс — ErrAlreadyProcessed, транзакция откатывается целиком.
func (r *SubscriptionRepository) Activate(ctx context.Context, sub *domain.Subscription, txn *domain.SubscriptionTransaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(sub).Error; err != nil {
			return err
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Profile{}).
			Where("id = ?", sub.UserID).
			Update("current_plan", sub.Plan).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyProcessed
	}
	return wrapStore(err)
}

func (r *SubscriptionRepository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionTransaction, error) {
	var txns []domain.SubscriptionTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&txns).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return txns, nil
}

func (r *SubscriptionRepository) GetPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	var plans []domain.SubscriptionPlan
	err := r.db.WithContext(ctx).Order("price asc").Find(&plans).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return plans, nil
}

func (r *SubscriptionRepository) GetPlanByName(ctx context.Context, name string) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidState
		}
		return nil, wrapStore(err)
	}
	return &plan, nil
}

func (r *SubscriptionRepository) CreatePlan(ctx context.Context, p *domain.SubscriptionPlan) error {
	return wrapStore(r.db.WithContext(ctx).Create(p).Error)
}

func (r *SubscriptionRepository) CountPlans(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SubscriptionPlan{}).Count(&count).Error
	return count, wrapStore(err)
}
