package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingoplatform/internal/domain"
)

type XPRepository struct {
	db *gorm.DB
}

func NewXPRepository(db *gorm.DB) *XPRepository {
	return &XPRepository{db: db}
}

// Grant атомарно начисляет amount: available_xp и total_xp растут вместе,
// строка истории (user, date, reason) суммируется. Никакой идемпотентности
// здесь нет — за разовость дневных бонусов отвечает вызывающий.
func (r *XPRepository) Grant(ctx context.Context, userID uuid.UUID, amount int, reason, date string) error {
	if amount < 0 {
		return domain.ErrInvalidState
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Profile{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"available_xp": gorm.Expr("available_xp + ?", amount),
				"total_xp":     gorm.Expr("total_xp + ?", amount),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}

		entry := domain.XPHistoryEntry{
			UserID:    userID,
			Date:      date,
			Reason:    reason,
			Amount:    amount,
			UpdatedAt: time.Now(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "reason"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount":     gorm.Expr("amount + ?", amount),
				"updated_at": time.Now(),
			}),
		}).Create(&entry).Error
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	return wrapStore(err)
}

// Spend списывает только available_xp. Условие в WHERE делает проверку
// баланса и списание одним атомарным апдейтом.
func (r *XPRepository) Spend(ctx context.Context, userID uuid.UUID, amount int) error {
	if amount < 0 {
		return domain.ErrInvalidState
	}
	result := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ? AND available_xp >= ?", userID, amount).
		Update("available_xp", gorm.Expr("available_xp - ?", amount))
	if result.Error != nil {
		return wrapStore(result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Profile{}).
			Where("id = ?", userID).Count(&count).Error; err != nil {
			return wrapStore(err)
		}
		if count == 0 {
			return domain.ErrUserNotFound
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}

// Refund возвращает ранее списанный available_xp (total_xp не трогаем:
// он монотонный и не должен расти от возвратов).
func (r *XPRepository) Refund(ctx context.Context, userID uuid.UUID, amount int) error {
	return wrapStore(r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", userID).
		Update("available_xp", gorm.Expr("available_xp + ?", amount)).Error)
}

func (r *XPRepository) History(ctx context.Context, userID uuid.UUID) ([]domain.XPHistoryEntry, error) {
	var entries []domain.XPHistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc").
		Find(&entries).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return entries, nil
}

// EntryFor нужен для дневных гвардов (welcome/daily): была ли уже
// запись с этой причиной в этот день.
func (r *XPRepository) EntryFor(ctx context.Context, userID uuid.UUID, date, reason string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.XPHistoryEntry{}).
		Where("user_id = ? AND date = ? AND reason = ?", userID, date, reason).
		Count(&count).Error
	if err != nil {
		return false, wrapStore(err)
	}
	return count > 0, nil
}
