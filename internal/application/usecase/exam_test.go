package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

type stubEvaluator struct {
	verdict  string
	err      error
	deadline time.Time
}

func (e *stubEvaluator) Evaluate(ctx context.Context, prompt string) (string, error) {
	e.deadline, _ = ctx.Deadline()
	if e.err != nil {
		return "", e.err
	}
	return e.verdict, nil
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		name    string
		verdict string
		want    int
		wantErr bool
	}{
		{"plain score line", "Score: 85\nGood command of grammar.", 85, false},
		{"score zero", "Score: 0. No relevant content.", 0, false},
		{"score embedded", "I would give this essay 72 out of 100.", 72, false},
		{"ignores out-of-range numbers", "Band 999 is not a thing, the score is 64.", 64, false},
		{"pass verdict", "PASS. Solid work overall.", 100, false},
		{"fail verdict", "FAIL: the answer is off-topic.", 0, false},
		{"unparseable", "The essay shows promise.", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseScore(tc.verdict)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrExternalService)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func newExamService(db *gorm.DB, clock Clock, evaluator Evaluator) *ExamService {
	xpLedger := NewXPLedger(repository.NewXPRepository(db))
	return NewExamService(
		repository.NewExamRepository(db),
		repository.NewCatalogRepository(db, nil),
		NewProgressTracker(repository.NewProgressRepository(db), xpLedger, clock, time.UTC, 25, testLogger()),
		newEntitlementResolver(db, clock),
		xpLedger,
		evaluator, clock, time.UTC, 50, testLogger(),
	)
}

func TestSubmitChapterExamPass(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	seedSubscription(t, db, userID, domain.PlanPro, testDay.AddDate(0, 1, 0))

	svc := newExamService(db, &fixedClock{now: testDay}, &stubEvaluator{verdict: "Score: 85. Coherent and well structured."})
	ctx := context.Background()

	res, err := svc.SubmitChapterExam(ctx, userID, "1", map[string]string{"q1": "answer"})
	require.NoError(t, err)
	require.True(t, res.Passed)
	require.Equal(t, 85, res.Score)
	require.Equal(t, 50, res.XPAward)
	require.Equal(t, 50, profileOf(t, db, userID).AvailableXP)

	// пересдача сданного: попытка записывается, XP не задваивается
	res, err = svc.SubmitChapterExam(ctx, userID, "1", map[string]string{"q1": "answer"})
	require.NoError(t, err)
	require.True(t, res.Passed)
	require.Zero(t, res.XPAward)
	require.Equal(t, 50, profileOf(t, db, userID).AvailableXP)

	attempts, err := svc.Attempts(ctx, userID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
}

func TestSubmitChapterExamBelowPassingScore(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	seedSubscription(t, db, userID, domain.PlanPro, testDay.AddDate(0, 1, 0))

	svc := newExamService(db, &fixedClock{now: testDay}, &stubEvaluator{verdict: "Score: 40. Too many errors."})
	ctx := context.Background()

	res, err := svc.SubmitChapterExam(ctx, userID, "1", map[string]string{"q1": "answer"})
	require.NoError(t, err)
	require.False(t, res.Passed)
	require.Zero(t, res.XPAward)

	// провал фиксируется попыткой, но не прогрессом
	record, err := repository.NewProgressRepository(db).GetProgress(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, record.CompletedExams)
	require.Zero(t, profileOf(t, db, userID).AvailableXP)
}

func TestSubmitChapterExamRequiresSubscription(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)

	svc := newExamService(db, &fixedClock{now: testDay}, &stubEvaluator{verdict: "Score: 90"})

	_, err := svc.SubmitChapterExam(context.Background(), userID, "1", map[string]string{"q1": "a"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestSubmitFinalExamGated(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 1)
	require.NoError(t, db.Create(&domain.Exam{
		ID:      uuid.New(),
		Section: domain.ExamSectionWriting,
		Prompt:  "final",
		IsFinal: true,
	}).Error)
	seedSubscription(t, db, userID, domain.PlanPro, testDay.AddDate(0, 1, 0))

	svc := newExamService(db, &fixedClock{now: testDay}, &stubEvaluator{verdict: "Score: 77"})
	ctx := context.Background()

	// курс не завершен — финальный экзамен закрыт
	_, err := svc.SubmitFinalExam(ctx, userID, map[string]string{"task1": "essay"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = repository.NewProgressRepository(db).AddCompletedChapter(ctx, userID, "1")
	require.NoError(t, err)

	res, err := svc.SubmitFinalExam(ctx, userID, map[string]string{"task1": "essay"})
	require.NoError(t, err)
	require.True(t, res.Passed)
	require.Equal(t, 77, res.Score)

	// финальный экзамен XP не дает
	require.Zero(t, profileOf(t, db, userID).AvailableXP)
}

func TestEvaluateTimeoutBounded(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	seedSubscription(t, db, userID, domain.PlanPro, testDay.AddDate(0, 1, 0))

	evaluator := &stubEvaluator{verdict: "Score: 80"}
	svc := newExamService(db, &fixedClock{now: testDay}, evaluator)

	start := time.Now()
	_, err := svc.SubmitChapterExam(context.Background(), userID, "1", map[string]string{"q1": "a"})
	require.NoError(t, err)

	// оценщику достается контекст с дедлайном, и не минутным
	require.False(t, evaluator.deadline.IsZero())
	require.LessOrEqual(t, evaluator.deadline.Sub(start), evaluateTimeout+time.Second)
}

func TestSubmitExamUnparseableVerdict(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	seedChapter(t, db, "1", 2)
	seedSubscription(t, db, userID, domain.PlanPro, testDay.AddDate(0, 1, 0))

	svc := newExamService(db, &fixedClock{now: testDay}, &stubEvaluator{verdict: "Looks fine to me."})

	_, err := svc.SubmitChapterExam(context.Background(), userID, "1", map[string]string{"q1": "a"})
	require.ErrorIs(t, err, domain.ErrExternalService)
}
