package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	return wrapStore(r.db.WithContext(ctx).Create(msg).Error)
}

// History отдает последние limit реплик в хронологическом порядке.
func (r *ChatRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	// разворачиваем в хронологию
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
