package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:100"`
	Username  string    `gorm:"uniqueIndex;not null;size:50"`
	Password  string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Тарифные планы. Free — это отсутствие активной подписки.
const (
	PlanFree  = "free"
	PlanBasic = "basic"
	PlanPro   = "pro"
)

type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"uniqueIndex"`
	DisplayName string

	AvailableXP int `gorm:"default:0"` // можно тратить (чат)
	TotalXP     int `gorm:"default:0"` // только растет

	Streak int `gorm:"default:0"`

	// Даты в формате "2006-01-02", всегда в таймзоне приложения.
	LastLoginDate   string `gorm:"size:10"`
	LastLoginXPDate string `gorm:"size:10"`

	CurrentPlan string `gorm:"size:10;default:'free'"`

	// Онбординг: заполняется один раз.
	OnboardingDone   bool `gorm:"default:false"`
	NativeLanguage   string
	Motivation       string
	ProficiencyLevel string
	DailyGoalMinutes int
	ReminderTime     string `gorm:"size:5"` // "HH:MM"

	CompletedLessonsCount int `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
