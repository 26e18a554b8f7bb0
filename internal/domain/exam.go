package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Попытка сдачи экзамена. Оценка приходит от LLM-оракула, поэтому
// сохраняем и сырой вердикт, и распарсенный балл.
type ExamAttempt struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	ExamID    uuid.UUID `gorm:"type:uuid;index"`
	ChapterID string    `gorm:"index"` // пусто у финального
	Section   string    `gorm:"size:12"`
	Answers   datatypes.JSON
	Score     int
	Passed    bool
	Feedback  string // сырой текст от оракула
	CreatedAt time.Time
}
