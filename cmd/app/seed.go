package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

var seedSections = []string{
	domain.ExamSectionReading,
	domain.ExamSectionWriting,
	domain.ExamSectionListening,
	domain.ExamSectionSpeaking,
}

// seedCatalog наполняет пустую базу стартовым контентом: 10 глав по
// 5 уроков, экзамен на главу, финальный экзамен и два тарифа.
// Непустую базу не трогаем.
func seedCatalog(db *gorm.DB, catalog *repository.CatalogRepository, subs *repository.SubscriptionRepository, log *zap.SugaredLogger) error {
	ctx := context.Background()

	count, err := catalog.CountChapters(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		for i := 1; i <= 10; i++ {
			chapterID := fmt.Sprintf("%d", i)
			chapter := &domain.Chapter{
				ID:           chapterID,
				Title:        fmt.Sprintf("Chapter %d", i),
				Description:  fmt.Sprintf("English course, part %d", i),
				PassingScore: 70,
			}
			for j := 1; j <= 5; j++ {
				chapter.Lessons = append(chapter.Lessons, domain.Lesson{
					ID:        uuid.New(),
					ChapterID: chapterID,
					LessonID:  fmt.Sprintf("l%d", j),
					Title:     fmt.Sprintf("Lesson %d.%d", i, j),
					VideoURL:  fmt.Sprintf("https://cdn.lingo.example/videos/%d/%d.mp4", i, j),
					Duration:  300,
					Order:     j,
				})
			}
			if err := catalog.CreateChapter(ctx, chapter); err != nil {
				return err
			}

			section := seedSections[(i-1)%len(seedSections)]
			if err := catalog.CreateExam(ctx, &domain.Exam{
				ID:        uuid.New(),
				ChapterID: chapterID,
				Section:   section,
				Title:     fmt.Sprintf("Chapter %d exam", i),
				Prompt:    fmt.Sprintf("Assess the learner on the material of chapter %d (%s).", i, section),
			}); err != nil {
				return err
			}
		}

		if err := catalog.CreateExam(ctx, &domain.Exam{
			ID:      uuid.New(),
			Section: domain.ExamSectionWriting,
			Title:   "Final IELTS assessment",
			Prompt:  "Full IELTS-style assessment covering the entire course.",
			IsFinal: true,
		}); err != nil {
			return err
		}
		log.Info("catalog seeded")
	}

	planCount, err := subs.CountPlans(ctx)
	if err != nil {
		return err
	}
	if planCount == 0 {
		plans := []domain.SubscriptionPlan{
			{
				ID:           uuid.New(),
				Name:         domain.PlanBasic,
				Price:        49900, // в пайсах
				Currency:     "INR",
				Description:  "First five chapters and AI chat",
				DurationDays: 30,
			},
			{
				ID:           uuid.New(),
				Name:         domain.PlanPro,
				Price:        99900,
				Currency:     "INR",
				Description:  "Full course, AI chat and the final assessment",
				DurationDays: 30,
			},
		}
		for i := range plans {
			if err := subs.CreatePlan(ctx, &plans[i]); err != nil {
				return err
			}
		}
		log.Info("subscription plans seeded")
	}

	return nil
}
