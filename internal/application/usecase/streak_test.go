package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lingoplatform/internal/infrastructure/repository"
)

func TestComputeStreak(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		dates []string
		want  int
	}{
		{"no activity", nil, 0},
		{"today only", []string{"2026-03-10"}, 1},
		{"two days", []string{"2026-03-10", "2026-03-09"}, 2},
		{"gap breaks the run", []string{"2026-03-10", "2026-03-08", "2026-03-07"}, 1},
		{"only old activity", []string{"2026-03-05", "2026-03-04"}, 0},
		{"unsorted input", []string{"2026-03-08", "2026-03-10", "2026-03-09"}, 3},
		{"duplicate days count once", []string{"2026-03-10", "2026-03-10", "2026-03-09"}, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeStreak(tc.dates, asOf, time.UTC))
		})
	}
}

func TestComputeStreakTimezone(t *testing.T) {
	// 23:30 UTC 9 марта = уже 10 марта в UTC+5
	asOf := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	plus5 := time.FixedZone("UTC+5", 5*3600)

	require.Equal(t, 0, ComputeStreak([]string{"2026-03-10"}, asOf, time.UTC))
	require.Equal(t, 1, ComputeStreak([]string{"2026-03-10"}, asOf, plus5))
}

func TestStreakTrackerRecordSession(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	clock := &fixedClock{now: testDay}
	tracker := NewStreakTracker(repository.NewUsageRepository(db), repository.NewProfileRepository(db), clock, time.UTC)
	ctx := context.Background()

	streak, err := tracker.RecordSession(ctx, userID, 30)
	require.NoError(t, err)
	require.Equal(t, 1, streak)

	// вторая сессия в тот же день стрик не меняет
	streak, err = tracker.RecordSession(ctx, userID, 45)
	require.NoError(t, err)
	require.Equal(t, 1, streak)

	clock.advanceDays(1)
	streak, err = tracker.RecordSession(ctx, userID, 30)
	require.NoError(t, err)
	require.Equal(t, 2, streak)

	// пропуск двух дней обнуляет серию
	clock.advanceDays(3)
	streak, err = tracker.RecordSession(ctx, userID, 30)
	require.NoError(t, err)
	require.Equal(t, 1, streak)

	require.Equal(t, 1, profileOf(t, db, userID).Streak)
}

func TestStreakTrackerCurrentGracePeriod(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	clock := &fixedClock{now: testDay}
	tracker := NewStreakTracker(repository.NewUsageRepository(db), repository.NewProfileRepository(db), clock, time.UTC)
	ctx := context.Background()

	_, err := tracker.RecordSession(ctx, userID, 30)
	require.NoError(t, err)

	// сегодня еще не занимался: вчерашний стрик показываем как есть
	clock.advanceDays(1)
	streak, err := tracker.Current(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, streak)

	// а через день серия уже мертва
	clock.advanceDays(1)
	streak, err = tracker.Current(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 0, streak)
}
