package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

// Evaluator оценивает ответы свободным текстом; в тестах — стаб.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (string, error)
}

// дольше не ждем: юзер сидит перед экраном результата
const evaluateTimeout = 20 * time.Second

type ExamResult struct {
	Score    int    `json:"score"`
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
	XPAward  int    `json:"xpAwarded"`
}

type ExamService struct {
	attempts     *repository.ExamRepository
	catalog      *repository.CatalogRepository
	progress     *ProgressTracker
	entitlements *EntitlementResolver
	xp           *XPLedger
	evaluator    Evaluator
	clock        Clock
	loc          *time.Location
	examXP       int
	log          *zap.SugaredLogger
}

func NewExamService(
	attempts *repository.ExamRepository,
	catalog *repository.CatalogRepository,
	progress *ProgressTracker,
	entitlements *EntitlementResolver,
	xp *XPLedger,
	evaluator Evaluator,
	clock Clock,
	loc *time.Location,
	examXP int,
	log *zap.SugaredLogger,
) *ExamService {
	return &ExamService{
		attempts:     attempts,
		catalog:      catalog,
		progress:     progress,
		entitlements: entitlements,
		xp:           xp,
		evaluator:    evaluator,
		clock:        clock,
		loc:          loc,
		examXP:       examXP,
		log:          log,
	}
}

// SubmitChapterExam прогоняет ответы через оценщика. Проходной балл —
// из главы. Сдал впервые — отметка в прогрессе и XP; пересдача сданного
// не задваивает ни то, ни другое.
func (s *ExamService) SubmitChapterExam(ctx context.Context, userID uuid.UUID, chapterID string, answers map[string]string) (*ExamResult, error) {
	chapter, err := s.catalog.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter.Exam == nil {
		return nil, fmt.Errorf("%w: chapter %s has no exam", domain.ErrInvalidState, chapterID)
	}

	idx := chapterIndex(chapterID)
	allowed, err := s.entitlements.CanAccessChapter(ctx, userID, idx)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrAccessDenied
	}

	score, feedback, err := s.evaluate(ctx, chapter.Exam, answers)
	if err != nil {
		return nil, err
	}
	passed := score >= chapter.PassingScore

	if err := s.storeAttempt(ctx, userID, chapter.Exam, answers, score, passed, feedback); err != nil {
		return nil, err
	}

	result := &ExamResult{Score: score, Passed: passed, Feedback: feedback}
	if !passed {
		return result, nil
	}

	created, err := s.progress.CompleteExam(ctx, userID, chapterID, len(chapter.Lessons))
	if err != nil {
		return nil, err
	}
	if created {
		today := dateKey(s.clock.Now(), s.loc)
		if err := s.xp.Grant(ctx, userID, s.examXP, domain.XPReasonExam, today); err != nil {
			return nil, err
		}
		result.XPAward = s.examXP
	}
	return result, nil
}

// SubmitFinalExam доступен только после завершения всех глав на pro.
// Финальный экзамен не дает XP и не трогает прогресс: это итоговая
// оценка уровня, не ступень курса.
func (s *ExamService) SubmitFinalExam(ctx context.Context, userID uuid.UUID, answers map[string]string) (*ExamResult, error) {
	eligible, err := s.entitlements.FinalAssessmentEligible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.ErrAccessDenied
	}

	final, err := s.catalog.GetFinalExam(ctx)
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, fmt.Errorf("%w: final exam is not configured", domain.ErrInvalidState)
	}

	score, feedback, err := s.evaluate(ctx, final, answers)
	if err != nil {
		return nil, err
	}
	passed := score >= 70

	if err := s.storeAttempt(ctx, userID, final, answers, score, passed, feedback); err != nil {
		return nil, err
	}
	return &ExamResult{Score: score, Passed: passed, Feedback: feedback}, nil
}

func (s *ExamService) Attempts(ctx context.Context, userID uuid.UUID) ([]domain.ExamAttempt, error) {
	return s.attempts.ListAttempts(ctx, userID)
}

func (s *ExamService) evaluate(ctx context.Context, exam *domain.Exam, answers map[string]string) (int, string, error) {
	prompt := buildExamPrompt(exam, answers)

	llmCtx, cancel := context.WithTimeout(ctx, evaluateTimeout)
	defer cancel()

	verdict, err := s.evaluator.Evaluate(llmCtx, prompt)
	if err != nil {
		return 0, "", err
	}

	score, err := parseScore(verdict)
	if err != nil {
		s.log.Errorw("unparseable exam verdict", "chapter_id", exam.ChapterID, "verdict", verdict)
		return 0, "", err
	}
	return score, verdict, nil
}

func (s *ExamService) storeAttempt(ctx context.Context, userID uuid.UUID, exam *domain.Exam, answers map[string]string, score int, passed bool, feedback string) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	return s.attempts.CreateAttempt(ctx, &domain.ExamAttempt{
		ID:        uuid.New(),
		UserID:    userID,
		ExamID:    exam.ID,
		ChapterID: exam.ChapterID,
		Section:   exam.Section,
		Answers:   datatypes.JSON(raw),
		Score:     score,
		Passed:    passed,
		Feedback:  feedback,
		CreatedAt: time.Now(),
	})
}

func buildExamPrompt(exam *domain.Exam, answers map[string]string) string {
	var b strings.Builder
	b.WriteString("Grade the following IELTS ")
	b.WriteString(exam.Section)
	b.WriteString(" exam.\n\nTask:\n")
	b.WriteString(exam.Prompt)
	b.WriteString("\n\nStudent answers:\n")
	for q, a := range answers {
		b.WriteString(q)
		b.WriteString(": ")
		b.WriteString(a)
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with a line \"Score: N\" where N is an integer 0-100, then short feedback.")
	return b.String()
}

var scoreRe = regexp.MustCompile(`\b(\d{1,3})\b`)

// parseScore вытаскивает вердикт из свободного текста модели: первое
// целое 0-100, иначе PASS/FAIL. Непонятный вердикт — ошибка, а не
// молчаливый зачет.
func parseScore(verdict string) (int, error) {
	for _, m := range scoreRe.FindAllString(verdict, -1) {
		n, err := strconv.Atoi(m)
		if err == nil && n >= 0 && n <= 100 {
			return n, nil
		}
	}
	upper := strings.ToUpper(verdict)
	if strings.Contains(upper, "PASS") && !strings.Contains(upper, "FAIL") {
		return 100, nil
	}
	if strings.Contains(upper, "FAIL") {
		return 0, nil
	}
	return 0, fmt.Errorf("%w: evaluator verdict has no score", domain.ErrExternalService)
}

func chapterIndex(chapterID string) int {
	n, err := strconv.Atoi(chapterID)
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}
