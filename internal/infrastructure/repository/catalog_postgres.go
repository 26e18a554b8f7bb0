package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
)

// Каталог read-only на рантайме, поэтому смело кешируем в Redis:
// списки на 10 минут, детали главы на час.
type CatalogRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewCatalogRepository(db *gorm.DB, rdb *redis.Client) *CatalogRepository {
	return &CatalogRepository{db: db, rdb: rdb}
}

func (r *CatalogRepository) ListChapters(ctx context.Context) ([]domain.Chapter, error) {
	const key = "catalog:chapters"

	if r.rdb != nil {
		if val, err := r.rdb.Get(ctx, key).Result(); err == nil {
			var chapters []domain.Chapter
			if json.Unmarshal([]byte(val), &chapters) == nil {
				return chapters, nil
			}
		}
	}

	var chapters []domain.Chapter
	// id строковый, сортируем как число, иначе "10" встанет после "1"
	err := r.db.WithContext(ctx).Order("CAST(id AS integer) asc").Find(&chapters).Error
	if err != nil {
		return nil, wrapStore(err)
	}

	if r.rdb != nil {
		if data, err := json.Marshal(chapters); err == nil {
			r.rdb.Set(ctx, key, data, 10*time.Minute)
		}
	}
	return chapters, nil
}

// GetChapter возвращает главу с уроками (отсортированы по order) и
// экзаменом. Не найдена — ErrInvalidState: такой главы нет в каталоге.
func (r *CatalogRepository) GetChapter(ctx context.Context, chapterID string) (*domain.Chapter, error) {
	key := "catalog:chapter:" + chapterID

	if r.rdb != nil {
		if val, err := r.rdb.Get(ctx, key).Result(); err == nil {
			var c domain.Chapter
			if json.Unmarshal([]byte(val), &c) == nil {
				return &c, nil
			}
		}
	}

	var chapter domain.Chapter
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" asc")
		}).
		Preload("Exam").
		First(&chapter, "id = ?", chapterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidState
		}
		return nil, wrapStore(err)
	}

	if r.rdb != nil {
		if data, err := json.Marshal(chapter); err == nil {
			r.rdb.Set(ctx, key, data, 1*time.Hour)
		}
	}
	return &chapter, nil
}

func (r *CatalogRepository) CountLessons(ctx context.Context, chapterID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Lesson{}).
		Where("chapter_id = ?", chapterID).
		Count(&count).Error
	return count, wrapStore(err)
}

func (r *CatalogRepository) CountChapters(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Chapter{}).Count(&count).Error
	return count, wrapStore(err)
}

func (r *CatalogRepository) GetExamByChapter(ctx context.Context, chapterID string) (*domain.Exam, error) {
	var exam domain.Exam
	err := r.db.WithContext(ctx).Where("chapter_id = ?", chapterID).First(&exam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidState
		}
		return nil, wrapStore(err)
	}
	return &exam, nil
}

func (r *CatalogRepository) GetFinalExam(ctx context.Context) (*domain.Exam, error) {
	var exam domain.Exam
	err := r.db.WithContext(ctx).Where("is_final = ?", true).First(&exam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // финальный экзамен может отсутствовать в каталоге
		}
		return nil, wrapStore(err)
	}
	return &exam, nil
}

func (r *CatalogRepository) CreateChapter(ctx context.Context, c *domain.Chapter) error {
	return wrapStore(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CatalogRepository) CreateExam(ctx context.Context, e *domain.Exam) error {
	return wrapStore(r.db.WithContext(ctx).Create(e).Error)
}
