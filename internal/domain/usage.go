package domain

import (
	"time"

	"github.com/google/uuid"
)

// Запись дневной активности, одна на календарный день. Источник правды
// для расчета стрика.
type DailyUsage struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Date          string    `gorm:"primaryKey;size:10"` // "2006-01-02"
	SessionsCount int       `gorm:"default:0"`
	TimeSpent     int       `gorm:"default:0"` // секунды
	LastUpdated   time.Time
}
