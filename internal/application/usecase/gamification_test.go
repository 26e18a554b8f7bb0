package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

func newGamification(db *gorm.DB, clock Clock) *GamificationService {
	progressRepo := repository.NewProgressRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	catalogRepo := repository.NewCatalogRepository(db, nil)
	xpLedger := NewXPLedger(repository.NewXPRepository(db))
	return NewGamificationService(
		NewProgressTracker(progressRepo, xpLedger, clock, time.UTC, 25, testLogger()),
		NewStreakTracker(repository.NewUsageRepository(db), profileRepo, clock, time.UTC),
		xpLedger,
		newEntitlementResolver(db, clock),
		catalogRepo,
		progressRepo,
		profileRepo,
		clock, time.UTC, 60, 10, testLogger(),
	)
}

func TestVideoTickAccumulatesWatchAndStreak(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	svc := newGamification(db, &fixedClock{now: testDay})
	ctx := context.Background()

	res, err := svc.VideoTick(ctx, userID, "1", "l1", 30)
	require.NoError(t, err)
	require.Equal(t, 30, res.WatchSeconds)
	require.Equal(t, domain.LessonInProgress, res.State)
	require.Equal(t, 1, res.Streak)

	res, err = svc.VideoTick(ctx, userID, "1", "l1", 15)
	require.NoError(t, err)
	require.Equal(t, 45, res.WatchSeconds)
}

func TestVideoTickRejectsUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	svc := newGamification(db, &fixedClock{now: testDay})

	_, err := svc.VideoTick(context.Background(), userID, "1", "l9", 30)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = svc.VideoTick(context.Background(), userID, "99", "l1", 30)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestLessonFinishedRequiresWatchThreshold(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	svc := newGamification(db, &fixedClock{now: testDay})
	ctx := context.Background()

	_, err := svc.VideoTick(ctx, userID, "1", "l1", 30)
	require.NoError(t, err)

	// 30 из 60 секунд — рано
	_, err = svc.LessonFinished(ctx, userID, "1", "l1")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = svc.VideoTick(ctx, userID, "1", "l1", 40)
	require.NoError(t, err)

	res, err := svc.LessonFinished(ctx, userID, "1", "l1")
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.Equal(t, 25, res.XPAwarded)
	require.Equal(t, 25, profileOf(t, db, userID).AvailableXP)
}

func TestLessonFinishedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	svc := newGamification(db, &fixedClock{now: testDay})
	ctx := context.Background()

	_, err := svc.VideoTick(ctx, userID, "1", "l1", 90)
	require.NoError(t, err)
	_, err = svc.LessonFinished(ctx, userID, "1", "l1")
	require.NoError(t, err)

	// completed — терминальное: тики его не сбрасывают
	tick, err := svc.VideoTick(ctx, userID, "1", "l1", 30)
	require.NoError(t, err)
	require.Equal(t, domain.LessonCompleted, tick.State)

	res, err := svc.LessonFinished(ctx, userID, "1", "l1")
	require.NoError(t, err)
	require.True(t, res.AlreadyDone)
	require.Zero(t, res.XPAwarded)
	require.Equal(t, 25, profileOf(t, db, userID).AvailableXP)
}

func TestDailyLoginOncePerDay(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	clock := &fixedClock{now: testDay}
	svc := newGamification(db, clock)
	ctx := context.Background()

	res, err := svc.DailyLogin(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 10, res.XPAwarded)

	// второй логин в тот же день — без бонуса
	res, err = svc.DailyLogin(ctx, userID)
	require.NoError(t, err)
	require.Zero(t, res.XPAwarded)
	require.Equal(t, 10, profileOf(t, db, userID).AvailableXP)

	clock.advanceDays(1)
	res, err = svc.DailyLogin(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 10, res.XPAwarded)
	require.Equal(t, 20, profileOf(t, db, userID).AvailableXP)
}

func TestDailyLoginCountsAsActivity(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	clock := &fixedClock{now: testDay}
	svc := newGamification(db, clock)
	ctx := context.Background()

	// логин без единого тика видео — день все равно в журнале
	res, err := svc.DailyLogin(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, res.Streak)

	dates, err := repository.NewUsageRepository(db).ListDates(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []string{dateKey(testDay, time.UTC)}, dates)

	clock.advanceDays(1)
	res, err = svc.DailyLogin(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 2, res.Streak)
	require.Equal(t, 2, profileOf(t, db, userID).Streak)
}

func TestSnapshotAggregates(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 1)
	svc := newGamification(db, &fixedClock{now: testDay})
	ctx := context.Background()

	_, err := svc.VideoTick(ctx, userID, "1", "l1", 90)
	require.NoError(t, err)
	_, err = svc.LessonFinished(ctx, userID, "1", "l1")
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 25, snap.Profile.AvailableXP)
	require.Len(t, snap.Progress.CompletedLessons, 1)
	require.Equal(t, domain.PlanFree, snap.Entitlements.Plan)
	require.Equal(t, 1, snap.Streak)
}
