package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

// fixedClock позволяет двигать "сейчас" руками.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

var testDay = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: живет в рамках одного соединения
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Chapter{},
		&domain.Lesson{},
		&domain.Exam{},
		&domain.CompletedLesson{},
		&domain.CompletedExam{},
		&domain.CompletedChapter{},
		&domain.LessonWatch{},
		&domain.XPHistoryEntry{},
		&domain.DailyUsage{},
		&domain.Subscription{},
		&domain.SubscriptionTransaction{},
		&domain.SubscriptionPlan{},
		&domain.ChatMessage{},
		&domain.ExamAttempt{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := &domain.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@test.local",
		Username: "u_" + uuid.NewString()[:8],
		Password: "hash",
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user.ID
}

func seedChapter(t *testing.T, db *gorm.DB, chapterID string, lessons int) {
	t.Helper()
	chapter := &domain.Chapter{
		ID:           chapterID,
		Title:        "Chapter " + chapterID,
		PassingScore: 70,
	}
	for i := 1; i <= lessons; i++ {
		chapter.Lessons = append(chapter.Lessons, domain.Lesson{
			ID:        uuid.New(),
			ChapterID: chapterID,
			LessonID:  lessonKey(i),
			Order:     i,
		})
	}
	require.NoError(t, db.Create(chapter).Error)
	require.NoError(t, db.Create(&domain.Exam{
		ID:        uuid.New(),
		ChapterID: chapterID,
		Section:   domain.ExamSectionReading,
		Prompt:    "test exam",
	}).Error)
}

func lessonKey(i int) string {
	return "l" + string(rune('0'+i))
}

func seedSubscription(t *testing.T, db *gorm.DB, userID uuid.UUID, plan string, endDate time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Subscription{
		UserID:    userID,
		Plan:      plan,
		StartDate: endDate.AddDate(0, -1, 0),
		EndDate:   endDate,
		Status:    domain.SubscriptionActive,
	}).Error)
}

func profileOf(t *testing.T, db *gorm.DB, userID uuid.UUID) *domain.Profile {
	t.Helper()
	var p domain.Profile
	require.NoError(t, db.First(&p, "id = ?", userID).Error)
	return &p
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
