package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

// Активная подписка пользователя. Одна запись на юзера (PK = UserID),
// новая оплата перезаписывает ее.
type Subscription struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Plan      string    `gorm:"size:10;not null"`
	Amount    int       `gorm:"not null"` // минорные единицы (пайсы)
	Currency  string    `gorm:"size:3;default:'INR'"`
	StartDate time.Time
	EndDate   time.Time
	Status    string         `gorm:"size:10;default:'active'"`
	Features  datatypes.JSON // производный набор возможностей плана

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active — есть ли действующая подписка на момент now.
func (s *Subscription) Active(now time.Time) bool {
	return s != nil && s.Status == SubscriptionActive && s.EndDate.After(now)
}

// Запись глобального журнала транзакций. Только append, никогда не
// обновляется — служит инвойсом/аудитом.
type SubscriptionTransaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	OrderID   string    `gorm:"index"`
	PaymentID string    `gorm:"uniqueIndex"`
	Plan      string    `gorm:"size:10"`
	Amount    int
	Currency  string `gorm:"size:3"`
	Status    string `gorm:"size:20"`
	CreatedAt time.Time
}

// Тариф.
type SubscriptionPlan struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"unique"` // "basic", "pro"
	Price        int       // минорные единицы
	Currency     string    `gorm:"size:3;default:'INR'"`
	Description  string
	DurationDays int `gorm:"default:30"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
