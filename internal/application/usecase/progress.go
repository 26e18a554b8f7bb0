package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

// ProgressTracker ведет пройденные уроки/экзамены и выводит из них
// завершенность глав.
type ProgressTracker struct {
	progress *repository.ProgressRepository
	xp       *XPLedger
	clock    Clock
	loc      *time.Location
	lessonXP int
	log      *zap.SugaredLogger
}

func NewProgressTracker(progress *repository.ProgressRepository, xp *XPLedger, clock Clock, loc *time.Location, lessonXP int, log *zap.SugaredLogger) *ProgressTracker {
	return &ProgressTracker{
		progress: progress,
		xp:       xp,
		clock:    clock,
		loc:      loc,
		lessonXP: lessonXP,
		log:      log,
	}
}

// CompleteLesson отмечает урок пройденным. Дубликат — no-op и false,
// без повторного XP (защита от фарма). За новый урок: +XP и проверка
// завершенности главы.
func (t *ProgressTracker) CompleteLesson(ctx context.Context, userID uuid.UUID, chapterID, lessonID string, totalLessonsInChapter int) (bool, error) {
	created, err := t.progress.AddCompletedLesson(ctx, userID, chapterID, lessonID)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	today := dateKey(t.clock.Now(), t.loc)
	if err := t.xp.Grant(ctx, userID, t.lessonXP, domain.XPReasonLesson, today); err != nil {
		return false, err
	}

	if _, err := t.EvaluateChapterCompletion(ctx, userID, chapterID, totalLessonsInChapter); err != nil {
		return false, err
	}
	return true, nil
}

// CompleteExam отмечает экзамен главы сданным. Повторная сдача — no-op.
func (t *ProgressTracker) CompleteExam(ctx context.Context, userID uuid.UUID, chapterID string, totalLessonsInChapter int) (bool, error) {
	created, err := t.progress.AddCompletedExam(ctx, userID, chapterID)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if _, err := t.EvaluateChapterCompletion(ctx, userID, chapterID, totalLessonsInChapter); err != nil {
		return false, err
	}
	return true, nil
}

// EvaluateChapterCompletion: глава завершена, когда пройдены ВСЕ ее
// уроки И сдан экзамен. Повторная отметка невозможна (вставка
// идемпотентна), так что XP за главу задвоить нельзя.
func (t *ProgressTracker) EvaluateChapterCompletion(ctx context.Context, userID uuid.UUID, chapterID string, totalLessonsInChapter int) (bool, error) {
	done, err := t.progress.CountLessonsInChapter(ctx, userID, chapterID)
	if err != nil {
		return false, err
	}
	if done != int64(totalLessonsInChapter) {
		return false, nil
	}

	examDone, err := t.progress.HasCompletedExam(ctx, userID, chapterID)
	if err != nil {
		return false, err
	}
	if !examDone {
		return false, nil
	}

	marked, err := t.progress.AddCompletedChapter(ctx, userID, chapterID)
	if err != nil {
		return false, err
	}
	if marked {
		t.log.Infow("chapter completed", "user_id", userID, "chapter_id", chapterID)
	}
	return marked, nil
}

// GetProgress никогда не отвечает not-found: у нового юзера прогресс
// пустой, но валидный.
func (t *ProgressTracker) GetProgress(ctx context.Context, userID uuid.UUID) (*domain.ProgressRecord, error) {
	return t.progress.GetProgress(ctx, userID)
}
