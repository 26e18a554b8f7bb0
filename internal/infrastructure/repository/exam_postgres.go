package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
)

type ExamRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) CreateAttempt(ctx context.Context, attempt *domain.ExamAttempt) error {
	return wrapStore(r.db.WithContext(ctx).Create(attempt).Error)
}

func (r *ExamRepository) ListAttempts(ctx context.Context, userID uuid.UUID) ([]domain.ExamAttempt, error) {
	var attempts []domain.ExamAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&attempts).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return attempts, nil
}
