package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingoplatform/internal/domain"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// UpsertSession добавляет тик сессии в дневную запись: одна строка на
// календарный день, повторные сессии суммируются.
func (r *UsageRepository) UpsertSession(ctx context.Context, userID uuid.UUID, date string, seconds int) error {
	entry := domain.DailyUsage{
		UserID:        userID,
		Date:          date,
		SessionsCount: 1,
		TimeSpent:     seconds,
		LastUpdated:   time.Now(),
	}
	return wrapStore(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"sessions_count": gorm.Expr("sessions_count + 1"),
			"time_spent":     gorm.Expr("time_spent + ?", seconds),
			"last_updated":   time.Now(),
		}),
	}).Create(&entry).Error)
}

// ListDates — отсортированные по убыванию даты активности для стрика.
func (r *UsageRepository) ListDates(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).Model(&domain.DailyUsage{}).
		Where("user_id = ?", userID).
		Order("date desc").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return dates, nil
}

func (r *UsageRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.DailyUsage, error) {
	var entries []domain.DailyUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc").
		Find(&entries).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return entries, nil
}
