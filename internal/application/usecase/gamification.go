package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

// GamificationService — оркестратор: принимает события обучения
// (тик видео, завершение урока, логин) и дергает трекеры в нужном
// порядке. Сами правила живут в трекерах, тут только склейка.
type GamificationService struct {
	progress     *ProgressTracker
	streak       *StreakTracker
	xp           *XPLedger
	entitlements *EntitlementResolver
	catalog      *repository.CatalogRepository
	progressRepo *repository.ProgressRepository
	profiles     *repository.ProfileRepository
	clock        Clock
	loc          *time.Location
	watchMin     int
	dailyXP      int
	log          *zap.SugaredLogger
}

func NewGamificationService(
	progress *ProgressTracker,
	streak *StreakTracker,
	xp *XPLedger,
	entitlements *EntitlementResolver,
	catalog *repository.CatalogRepository,
	progressRepo *repository.ProgressRepository,
	profiles *repository.ProfileRepository,
	clock Clock,
	loc *time.Location,
	watchMin, dailyXP int,
	log *zap.SugaredLogger,
) *GamificationService {
	return &GamificationService{
		progress:     progress,
		streak:       streak,
		xp:           xp,
		entitlements: entitlements,
		catalog:      catalog,
		progressRepo: progressRepo,
		profiles:     profiles,
		clock:        clock,
		loc:          loc,
		watchMin:     watchMin,
		dailyXP:      dailyXP,
		log:          log,
	}
}

type TickResult struct {
	WatchSeconds int    `json:"watchSeconds"`
	State        string `json:"state"`
	Streak       int    `json:"streak"`
}

// VideoTick — периодический сигнал плеера. Накапливает секунды
// просмотра и засчитывает активность дня (стрик). XP тут не трогаем:
// опыт дают только завершения.
func (s *GamificationService) VideoTick(ctx context.Context, userID uuid.UUID, chapterID, lessonID string, seconds int) (*TickResult, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("%w: tick seconds must be positive", domain.ErrInvalidState)
	}
	if err := s.validateLesson(ctx, chapterID, lessonID); err != nil {
		return nil, err
	}

	watch, err := s.progressRepo.AddWatchTime(ctx, userID, chapterID, lessonID, seconds)
	if err != nil {
		return nil, err
	}

	streak, err := s.streak.RecordSession(ctx, userID, seconds)
	if err != nil {
		return nil, err
	}

	return &TickResult{WatchSeconds: watch.WatchSeconds, State: watch.State, Streak: streak}, nil
}

type FinishResult struct {
	Completed    bool `json:"completed"`
	AlreadyDone  bool `json:"alreadyDone"`
	XPAwarded    int  `json:"xpAwarded"`
	WatchSeconds int  `json:"watchSeconds"`
}

// LessonFinished закрывает урок: проверяет, что урок есть в каталоге и
// досмотрен до порога, переводит просмотр в completed и отдает урок
// трекеру прогресса. Повторное завершение — no-op без XP.
func (s *GamificationService) LessonFinished(ctx context.Context, userID uuid.UUID, chapterID, lessonID string) (*FinishResult, error) {
	chapter, err := s.catalog.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if !chapterHasLesson(chapter, lessonID) {
		return nil, fmt.Errorf("%w: lesson %s is not in chapter %s", domain.ErrInvalidState, lessonID, chapterID)
	}

	watch, err := s.progressRepo.GetWatch(ctx, userID, chapterID, lessonID)
	if err != nil {
		return nil, err
	}
	if watch.State == domain.LessonCompleted {
		return &FinishResult{AlreadyDone: true, WatchSeconds: watch.WatchSeconds}, nil
	}
	if watch.WatchSeconds < s.watchMin {
		return nil, fmt.Errorf("%w: watched %ds of required %ds", domain.ErrInvalidState, watch.WatchSeconds, s.watchMin)
	}

	if err := s.progressRepo.MarkWatchCompleted(ctx, userID, chapterID, lessonID); err != nil {
		return nil, err
	}

	created, err := s.progress.CompleteLesson(ctx, userID, chapterID, lessonID, len(chapter.Lessons))
	if err != nil {
		return nil, err
	}

	res := &FinishResult{Completed: true, WatchSeconds: watch.WatchSeconds}
	if created {
		res.XPAwarded = s.progress.lessonXP
	} else {
		res.AlreadyDone = true
	}
	return res, nil
}

type LoginResult struct {
	XPAwarded int `json:"xpAwarded"`
	Streak    int `json:"streak"`
}

// DailyLogin начисляет дневной бонус не больше раза в календарные
// сутки. Гвард — last_login_xp_date в профиле, а не сам леджер:
// Grant не идемпотентен.
func (s *GamificationService) DailyLogin(ctx context.Context, userID uuid.UUID) (*LoginResult, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// логин — тоже активность дня: день попадает в журнал и стрик
	// живет даже без просмотра видео
	streak, err := s.streak.RecordSession(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	today := dateKey(s.clock.Now(), s.loc)
	res := &LoginResult{Streak: streak}

	if profile.LastLoginXPDate == today {
		if err := s.profiles.SetLoginDates(ctx, userID, today, ""); err != nil {
			return nil, err
		}
		return res, nil
	}

	if err := s.xp.Grant(ctx, userID, s.dailyXP, domain.XPReasonDaily, today); err != nil {
		return nil, err
	}
	if err := s.profiles.SetLoginDates(ctx, userID, today, today); err != nil {
		return nil, err
	}
	res.XPAwarded = s.dailyXP
	s.log.Infow("daily login bonus", "user_id", userID, "amount", s.dailyXP)
	return res, nil
}

// Snapshot — агрегированное состояние юзера для главного экрана.
type Snapshot struct {
	Profile      *domain.Profile        `json:"profile"`
	Progress     *domain.ProgressRecord `json:"progress"`
	Entitlements *Entitlements          `json:"entitlements"`
	Streak       int                    `json:"streak"`
}

func (s *GamificationService) Snapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	record, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	ent, err := s.entitlements.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	streak, err := s.streak.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Profile: profile, Progress: record, Entitlements: ent, Streak: streak}, nil
}

func (s *GamificationService) validateLesson(ctx context.Context, chapterID, lessonID string) error {
	chapter, err := s.catalog.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}
	if !chapterHasLesson(chapter, lessonID) {
		return fmt.Errorf("%w: lesson %s is not in chapter %s", domain.ErrInvalidState, lessonID, chapterID)
	}
	return nil
}

func chapterHasLesson(c *domain.Chapter, lessonID string) bool {
	for _, l := range c.Lessons {
		if l.LessonID == lessonID {
			return true
		}
	}
	return false
}
