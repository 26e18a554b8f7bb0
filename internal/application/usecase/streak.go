package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lingoplatform/internal/infrastructure/repository"
)

// ComputeStreak считает непрерывную серию дней с активностью, начиная
// с asOf и шагая назад по календарю до первого пропуска. Несколько
// сессий в один день считаются одним днем. Нет записи за asOf — стрик 0.
func ComputeStreak(dates []string, asOf time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}

	day := asOf.In(loc)
	streak := 0
	for {
		if _, ok := set[day.Format(dateLayout)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

type StreakTracker struct {
	usage    *repository.UsageRepository
	profiles *repository.ProfileRepository
	clock    Clock
	loc      *time.Location
}

func NewStreakTracker(usage *repository.UsageRepository, profiles *repository.ProfileRepository, clock Clock, loc *time.Location) *StreakTracker {
	return &StreakTracker{usage: usage, profiles: profiles, clock: clock, loc: loc}
}

// RecordSession пишет тик активности в дневной лог и пересчитывает
// стрик профиля по логу (лог — источник правды, поле в профиле — кеш
// для выдачи).
func (t *StreakTracker) RecordSession(ctx context.Context, userID uuid.UUID, seconds int) (int, error) {
	now := t.clock.Now()
	if err := t.usage.UpsertSession(ctx, userID, dateKey(now, t.loc), seconds); err != nil {
		return 0, err
	}

	dates, err := t.usage.ListDates(ctx, userID)
	if err != nil {
		return 0, err
	}
	streak := ComputeStreak(dates, now, t.loc)

	if err := t.profiles.SetStreak(ctx, userID, streak); err != nil {
		return 0, err
	}
	return streak, nil
}

// Current пересчитывает стрик без записи новой активности (для выдачи
// профиля: вчерашний стрик без захода сегодня показываем как есть).
func (t *StreakTracker) Current(ctx context.Context, userID uuid.UUID) (int, error) {
	dates, err := t.usage.ListDates(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := t.clock.Now()
	streak := ComputeStreak(dates, now, t.loc)
	if streak == 0 {
		// сегодня активности не было — серия могла дожить со вчера
		streak = ComputeStreak(dates, now.AddDate(0, 0, -1), t.loc)
	}
	return streak, nil
}
