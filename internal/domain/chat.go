package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	Role      string    `gorm:"size:10;not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}
