package usecase

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

func TestResolveAccess(t *testing.T) {
	now := testDay
	active := func(plan string) *domain.Subscription {
		return &domain.Subscription{
			Plan:    plan,
			Status:  domain.SubscriptionActive,
			EndDate: now.AddDate(0, 1, 0),
		}
	}

	cases := []struct {
		name    string
		sub     *domain.Subscription
		chapter int
		want    bool
	}{
		{"no subscription", nil, 0, false},
		{"expired pro", &domain.Subscription{Plan: domain.PlanPro, Status: domain.SubscriptionActive, EndDate: now.AddDate(0, 0, -1)}, 0, false},
		{"inactive status", &domain.Subscription{Plan: domain.PlanPro, Status: domain.SubscriptionInactive, EndDate: now.AddDate(0, 1, 0)}, 0, false},
		{"basic within limit", active(domain.PlanBasic), 4, true},
		{"basic beyond limit", active(domain.PlanBasic), 5, false},
		{"pro first chapter", active(domain.PlanPro), 0, true},
		{"pro beyond basic limit", active(domain.PlanPro), 9, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveAccess(tc.sub, tc.chapter, now))
		})
	}
}

func newEntitlementResolver(db *gorm.DB, clock Clock) *EntitlementResolver {
	return NewEntitlementResolver(
		repository.NewSubscriptionRepository(db),
		repository.NewProgressRepository(db),
		repository.NewCatalogRepository(db, nil),
		clock,
	)
}

func TestResolveForFreeUser(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	resolver := newEntitlementResolver(db, &fixedClock{now: testDay})

	ent, err := resolver.Resolve(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, domain.PlanFree, ent.Plan)
	require.False(t, ent.Active)
	require.Zero(t, ent.UnlockedChapters)
	require.False(t, ent.ChatEnabled)
	require.False(t, ent.FinalExamEnabled)
}

func TestFinalAssessmentEligibility(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 1)
	seedChapter(t, db, "2", 1)
	require.NoError(t, db.Create(&domain.Exam{
		ID:      uuid.New(),
		Section: domain.ExamSectionWriting,
		Prompt:  "final",
		IsFinal: true,
	}).Error)

	clock := &fixedClock{now: testDay}
	resolver := newEntitlementResolver(db, clock)
	ctx := context.Background()

	seedSubscription(t, db, userID, domain.PlanPro, testDay.AddDate(0, 1, 0))

	// главы не завершены — рано
	ok, err := resolver.FinalAssessmentEligible(ctx, userID)
	require.NoError(t, err)
	require.False(t, ok)

	progressRepo := repository.NewProgressRepository(db)
	for _, ch := range []string{"1", "2"} {
		_, err := progressRepo.AddCompletedChapter(ctx, userID, ch)
		require.NoError(t, err)
	}

	ok, err = resolver.FinalAssessmentEligible(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestChapterListOrderMatchesAccessRule(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	for i := 1; i <= 10; i++ {
		seedChapter(t, db, strconv.Itoa(i), 1)
	}
	seedSubscription(t, db, userID, domain.PlanBasic, testDay.AddDate(0, 1, 0))

	clock := &fixedClock{now: testDay}
	resolver := newEntitlementResolver(db, clock)
	ctx := context.Background()

	// список идет в числовом порядке, "10" в конце, а не после "1"
	chapters, err := repository.NewCatalogRepository(db, nil).ListChapters(ctx)
	require.NoError(t, err)
	require.Len(t, chapters, 10)
	for i, chapter := range chapters {
		require.Equal(t, strconv.Itoa(i+1), chapter.ID)
	}

	// позиция в списке и правило доступа говорят одно и то же
	for i, chapter := range chapters {
		idx, err := strconv.Atoi(chapter.ID)
		require.NoError(t, err)
		allowed, err := resolver.CanAccessChapter(ctx, userID, idx-1)
		require.NoError(t, err)
		require.Equal(t, i < basicChapterLimit, allowed, "chapter %s", chapter.ID)
	}
}

func TestFinalAssessmentRequiresPro(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 1)
	seedSubscription(t, db, userID, domain.PlanBasic, testDay.AddDate(0, 1, 0))

	resolver := newEntitlementResolver(db, &fixedClock{now: testDay})
	ctx := context.Background()

	_, err := repository.NewProgressRepository(db).AddCompletedChapter(ctx, userID, "1")
	require.NoError(t, err)

	ok, err := resolver.FinalAssessmentEligible(ctx, userID)
	require.NoError(t, err)
	require.False(t, ok)
}
