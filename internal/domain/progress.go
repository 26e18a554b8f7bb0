package domain

import (
	"time"

	"github.com/google/uuid"
)

// Пройденный урок. Ключ chapter+lesson, дубликаты невозможны по PK.
type CompletedLesson struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ChapterID string    `gorm:"primaryKey;index"`
	LessonID  string    `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Key возвращает "{chapterId}-{lessonId}" — внешний формат ключа прогресса.
func (l CompletedLesson) Key() string {
	return l.ChapterID + "-" + l.LessonID
}

type CompletedExam struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ChapterID string    `gorm:"primaryKey"`
	CreatedAt time.Time
}

type CompletedChapter struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ChapterID string    `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Сводка прогресса для фронтенда. Пустая, но валидная, если юзер еще
// ничего не прошел.
type ProgressRecord struct {
	CompletedLessons      []CompletedLesson `json:"completed_lessons"`
	CompletedLessonsCount int               `json:"completed_lessons_count"`
	CompletedExams        []string          `json:"completed_exams"`
	CompletedChapters     []string          `json:"completed_chapters"`
}

// Состояния просмотра урока.
const (
	LessonNotStarted = "not_started"
	LessonInProgress = "in_progress"
	LessonCompleted  = "completed"
)

// Накопленное время просмотра видео урока.
type LessonWatch struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChapterID    string    `gorm:"primaryKey"`
	LessonID     string    `gorm:"primaryKey"`
	WatchSeconds int       `gorm:"default:0"`
	State        string    `gorm:"size:12;default:'not_started'"`
	UpdatedAt    time.Time
}
