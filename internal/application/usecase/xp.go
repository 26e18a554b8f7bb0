package usecase

import (
	"context"

	"github.com/google/uuid"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

// XPLedger — учет опыта. Grant сам по себе НЕ идемпотентен: два вызова
// с одной датой и причиной дадут удвоенную запись. Разовость дневных
// бонусов (логин, welcome) обеспечивают вызывающие через гварды.
type XPLedger struct {
	repo *repository.XPRepository
}

func NewXPLedger(repo *repository.XPRepository) *XPLedger {
	return &XPLedger{repo: repo}
}

func (l *XPLedger) Grant(ctx context.Context, userID uuid.UUID, amount int, reason, date string) error {
	return l.repo.Grant(ctx, userID, amount, reason, date)
}

func (l *XPLedger) Spend(ctx context.Context, userID uuid.UUID, amount int) error {
	return l.repo.Spend(ctx, userID, amount)
}

// Refund возвращает списанное (только available_xp, total_xp монотонен).
func (l *XPLedger) Refund(ctx context.Context, userID uuid.UUID, amount int) error {
	return l.repo.Refund(ctx, userID, amount)
}

// GrantedToday — гвард для разовых дневных начислений.
func (l *XPLedger) GrantedToday(ctx context.Context, userID uuid.UUID, date, reason string) (bool, error) {
	return l.repo.EntryFor(ctx, userID, date, reason)
}

// History собирает плоские строки в дневные сводки: earned = сумма по
// всем причинам дня.
func (l *XPLedger) History(ctx context.Context, userID uuid.UUID) ([]domain.DayXP, error) {
	entries, err := l.repo.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	days := []domain.DayXP{}
	byDate := map[string]int{}
	for _, e := range entries {
		idx, ok := byDate[e.Date]
		if !ok {
			days = append(days, domain.DayXP{Date: e.Date, Sources: map[string]int{}})
			idx = len(days) - 1
			byDate[e.Date] = idx
		}
		days[idx].Earned += e.Amount
		days[idx].Sources[e.Reason] += e.Amount
	}
	return days, nil
}
