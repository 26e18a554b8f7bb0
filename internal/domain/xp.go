package domain

import (
	"time"

	"github.com/google/uuid"
)

// Источники начислений XP.
const (
	XPReasonLesson  = "Lesson Completed"
	XPReasonExam    = "Exam Passed"
	XPReasonDaily   = "Daily Login"
	XPReasonWelcome = "Welcome Bonus"
)

// Строка истории XP: сколько начислено за (день, причину). Повторное
// начисление с той же причиной в тот же день суммируется в amount.
type XPHistoryEntry struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Date      string    `gorm:"primaryKey;size:10"` // "2006-01-02"
	Reason    string    `gorm:"primaryKey;size:50"`
	Amount    int       `gorm:"not null"`
	UpdatedAt time.Time
}

// Дневная сводка для истории: earned = сумма по всем причинам.
type DayXP struct {
	Date    string         `json:"date"`
	Earned  int            `json:"earned"`
	Sources map[string]int `json:"sources"`
}
