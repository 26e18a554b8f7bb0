package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

const basicChapterLimit = 5

// ResolveAccess — чистое правило доступа к главе по индексу (0-based).
// Без активной подписки закрыто все: бесплатного контента нет, витрина
// глав открыта, прохождение — только по подписке.
func ResolveAccess(sub *domain.Subscription, chapterIndex int, now time.Time) bool {
	if sub == nil || !sub.Active(now) {
		return false
	}
	switch sub.Plan {
	case domain.PlanPro:
		return true
	case domain.PlanBasic:
		return chapterIndex < basicChapterLimit
	default:
		return false
	}
}

// Entitlements — снимок прав юзера на момент запроса.
type Entitlements struct {
	Plan             string `json:"plan"`
	Active           bool   `json:"active"`
	UnlockedChapters int    `json:"unlockedChapters"`
	ChatEnabled      bool   `json:"chatEnabled"`
	FinalExamEnabled bool   `json:"finalExamEnabled"`
}

type EntitlementResolver struct {
	subs     *repository.SubscriptionRepository
	progress *repository.ProgressRepository
	catalog  *repository.CatalogRepository
	clock    Clock
}

func NewEntitlementResolver(subs *repository.SubscriptionRepository, progress *repository.ProgressRepository, catalog *repository.CatalogRepository, clock Clock) *EntitlementResolver {
	return &EntitlementResolver{subs: subs, progress: progress, catalog: catalog, clock: clock}
}

// CanAccessChapter проверяет доступ к главе по ее позиции в каталоге.
func (r *EntitlementResolver) CanAccessChapter(ctx context.Context, userID uuid.UUID, chapterIndex int) (bool, error) {
	sub, err := r.subs.GetActive(ctx, userID)
	if err != nil {
		return false, err
	}
	return ResolveAccess(sub, chapterIndex, r.clock.Now()), nil
}

// Resolve собирает полный снимок прав: план, сколько глав открыто,
// доступен ли чат и финальный экзамен.
func (r *EntitlementResolver) Resolve(ctx context.Context, userID uuid.UUID) (*Entitlements, error) {
	now := r.clock.Now()

	sub, err := r.subs.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := r.catalog.CountChapters(ctx)
	if err != nil {
		return nil, err
	}

	ent := &Entitlements{Plan: domain.PlanFree}
	if sub == nil || !sub.Active(now) {
		return ent, nil
	}

	ent.Plan = sub.Plan
	ent.Active = true
	ent.ChatEnabled = true
	switch sub.Plan {
	case domain.PlanPro:
		ent.UnlockedChapters = int(total)
		eligible, err := r.finalEligible(ctx, userID, total, now, sub)
		if err != nil {
			return nil, err
		}
		ent.FinalExamEnabled = eligible
	case domain.PlanBasic:
		ent.UnlockedChapters = basicChapterLimit
		if int(total) < basicChapterLimit {
			ent.UnlockedChapters = int(total)
		}
	}
	return ent, nil
}

// FinalAssessmentEligible: pro-план, все главы завершены и финальный
// экзамен существует в каталоге.
func (r *EntitlementResolver) FinalAssessmentEligible(ctx context.Context, userID uuid.UUID) (bool, error) {
	now := r.clock.Now()
	sub, err := r.subs.GetActive(ctx, userID)
	if err != nil {
		return false, err
	}
	if sub == nil || !sub.Active(now) {
		return false, nil
	}
	total, err := r.catalog.CountChapters(ctx)
	if err != nil {
		return false, err
	}
	return r.finalEligible(ctx, userID, total, now, sub)
}

func (r *EntitlementResolver) finalEligible(ctx context.Context, userID uuid.UUID, totalChapters int64, now time.Time, sub *domain.Subscription) (bool, error) {
	if sub.Plan != domain.PlanPro {
		return false, nil
	}
	done, err := r.progress.CountCompletedChapters(ctx, userID)
	if err != nil {
		return false, err
	}
	if totalChapters == 0 || done != totalChapters {
		return false, nil
	}
	final, err := r.catalog.GetFinalExam(ctx)
	if err != nil {
		return false, err
	}
	return final != nil, nil
}
