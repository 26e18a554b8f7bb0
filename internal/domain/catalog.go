package domain

import (
	"time"

	"github.com/google/uuid"
)

// Контент-каталог. Для ядра он read-only: наполняется сидом при старте.
type Chapter struct {
	ID           string `gorm:"primaryKey"` // "1", "2", ... порядок = числовой id
	Title        string `gorm:"index"`
	Description  string
	PassingScore int `gorm:"default:70"` // порог экзамена, %

	Lessons []Lesson `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE;"`
	Exam    *Exam    `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Lesson struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChapterID string    `gorm:"index"`
	LessonID  string    `gorm:"index"` // "l1", "l2", ... ключ внутри главы
	Title     string
	VideoURL  string
	Duration  int // секунды
	Order     int // для сортировки (1, 2, 3...)

	CreatedAt time.Time
}

// Типы секций экзамена.
const (
	ExamSectionReading   = "reading"
	ExamSectionWriting   = "writing"
	ExamSectionListening = "listening"
	ExamSectionSpeaking  = "speaking"
)

type Exam struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChapterID string    `gorm:"uniqueIndex"` // пусто у финального экзамена
	Section   string    `gorm:"size:12"`
	Title     string
	Prompt    string // задание, уходит в рубрику оценивания
	IsFinal   bool   `gorm:"default:false;index"`

	CreatedAt time.Time
}
