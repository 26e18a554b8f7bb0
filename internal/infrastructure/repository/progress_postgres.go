package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingoplatform/internal/domain"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// AddCompletedLesson вставляет урок и инкрементит счетчик профиля одной
// транзакцией, чтобы инвариант count == len(completed_lessons) не ломался
// конкурентными вкладками. created == false — урок уже был пройден.
func (r *ProgressRepository) AddCompletedLesson(ctx context.Context, userID uuid.UUID, chapterID, lessonID string) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := domain.CompletedLesson{
			UserID:    userID,
			ChapterID: chapterID,
			LessonID:  lessonID,
			CreatedAt: time.Now(),
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil // дубликат, не ошибка
		}
		created = true
		return tx.Model(&domain.Profile{}).
			Where("id = ?", userID).
			Update("completed_lessons_count", gorm.Expr("completed_lessons_count + 1")).Error
	})
	if err != nil {
		return false, wrapStore(err)
	}
	return created, nil
}

func (r *ProgressRepository) CountLessonsInChapter(ctx context.Context, userID uuid.UUID, chapterID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CompletedLesson{}).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		Count(&count).Error
	return count, wrapStore(err)
}

func (r *ProgressRepository) AddCompletedExam(ctx context.Context, userID uuid.UUID, chapterID string) (bool, error) {
	item := domain.CompletedExam{UserID: userID, ChapterID: chapterID, CreatedAt: time.Now()}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
	if result.Error != nil {
		return false, wrapStore(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ProgressRepository) HasCompletedExam(ctx context.Context, userID uuid.UUID, chapterID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CompletedExam{}).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		Count(&count).Error
	return count > 0, wrapStore(err)
}

// AddCompletedChapter идемпотентен: повторная вставка — no-op, false.
func (r *ProgressRepository) AddCompletedChapter(ctx context.Context, userID uuid.UUID, chapterID string) (bool, error) {
	item := domain.CompletedChapter{UserID: userID, ChapterID: chapterID, CreatedAt: time.Now()}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
	if result.Error != nil {
		return false, wrapStore(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetProgress собирает сводку. Если юзер еще ничего не прошел —
// возвращаем пустую, но валидную структуру, не ошибку.
func (r *ProgressRepository) GetProgress(ctx context.Context, userID uuid.UUID) (*domain.ProgressRecord, error) {
	record := &domain.ProgressRecord{
		CompletedLessons:  []domain.CompletedLesson{},
		CompletedExams:    []string{},
		CompletedChapters: []string{},
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&record.CompletedLessons).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	record.CompletedLessonsCount = len(record.CompletedLessons)

	var exams []domain.CompletedExam
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&exams).Error; err != nil {
		return nil, wrapStore(err)
	}
	for _, e := range exams {
		record.CompletedExams = append(record.CompletedExams, e.ChapterID)
	}

	var chapters []domain.CompletedChapter
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&chapters).Error; err != nil {
		return nil, wrapStore(err)
	}
	for _, c := range chapters {
		record.CompletedChapters = append(record.CompletedChapters, c.ChapterID)
	}

	return record, nil
}

func (r *ProgressRepository) CountCompletedChapters(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CompletedChapter{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, wrapStore(err)
}

func (r *ProgressRepository) CountCompletedExams(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CompletedExam{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, wrapStore(err)
}

// === просмотр видео ===

func (r *ProgressRepository) GetWatch(ctx context.Context, userID uuid.UUID, chapterID, lessonID string) (*domain.LessonWatch, error) {
	var w domain.LessonWatch
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ? AND lesson_id = ?", userID, chapterID, lessonID).
		First(&w).Error
	if err == gorm.ErrRecordNotFound {
		return &domain.LessonWatch{
			UserID: userID, ChapterID: chapterID, LessonID: lessonID,
			State: domain.LessonNotStarted,
		}, nil
	}
	if err != nil {
		return nil, wrapStore(err)
	}
	return &w, nil
}

// AddWatchTime накапливает секунды просмотра. Completed — терминальное
// состояние: повторные просмотры его не трогают.
func (r *ProgressRepository) AddWatchTime(ctx context.Context, userID uuid.UUID, chapterID, lessonID string, seconds int) (*domain.LessonWatch, error) {
	w := domain.LessonWatch{
		UserID: userID, ChapterID: chapterID, LessonID: lessonID,
		WatchSeconds: seconds,
		State:        domain.LessonInProgress,
		UpdatedAt:    time.Now(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"watch_seconds": gorm.Expr("watch_seconds + ?", seconds),
			"state": gorm.Expr("CASE WHEN state = ? THEN state ELSE ? END",
				domain.LessonCompleted, domain.LessonInProgress),
			"updated_at": time.Now(),
		}),
	}).Create(&w)
	if result.Error != nil {
		return nil, wrapStore(result.Error)
	}

	var out domain.LessonWatch
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ? AND lesson_id = ?", userID, chapterID, lessonID).
		First(&out).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return &out, nil
}

func (r *ProgressRepository) MarkWatchCompleted(ctx context.Context, userID uuid.UUID, chapterID, lessonID string) error {
	return wrapStore(r.db.WithContext(ctx).Model(&domain.LessonWatch{}).
		Where("user_id = ? AND chapter_id = ? AND lesson_id = ?", userID, chapterID, lessonID).
		Update("state", domain.LessonCompleted).Error)
}
