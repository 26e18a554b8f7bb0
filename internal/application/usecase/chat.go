package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/repository"
)

const (
	chatHistoryWindow = 20
	chatTimeout       = 20 * time.Second

	chatSystemPrompt = "You are a friendly English tutor. Keep replies short, " +
		"correct the learner's mistakes gently and always answer in English."
)

// ChatModel — абстракция над LLM, в тестах подменяется стабом.
type ChatModel interface {
	Chat(ctx context.Context, system string, turns []domain.ChatMessage) (string, error)
}

// ChatService — AI-диалог за XP. Сообщение стоит messageCost: сначала
// списываем, потом идем в модель, при отказе модели возвращаем
// списанное. Нехватка баланса — ErrInsufficientFunds до любых вызовов.
type ChatService struct {
	messages    *repository.ChatRepository
	xp          *XPLedger
	model       ChatModel
	messageCost int
	log         *zap.SugaredLogger
}

func NewChatService(messages *repository.ChatRepository, xp *XPLedger, model ChatModel, messageCost int, log *zap.SugaredLogger) *ChatService {
	return &ChatService{
		messages:    messages,
		xp:          xp,
		model:       model,
		messageCost: messageCost,
		log:         log,
	}
}

func (s *ChatService) SendMessage(ctx context.Context, userID uuid.UUID, content string) (*domain.ChatMessage, error) {
	if err := s.xp.Spend(ctx, userID, s.messageCost); err != nil {
		return nil, err
	}

	history, err := s.messages.History(ctx, userID, chatHistoryWindow)
	if err != nil {
		s.refund(ctx, userID)
		return nil, err
	}

	userMsg := domain.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      domain.ChatRoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	turns := append(history, userMsg)

	llmCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	reply, err := s.model.Chat(llmCtx, chatSystemPrompt, turns)
	if err != nil {
		// модель не ответила — сообщение не состоялось, XP назад
		s.refund(ctx, userID)
		return nil, err
	}

	if err := s.messages.Append(ctx, &userMsg); err != nil {
		s.refund(ctx, userID)
		return nil, err
	}

	assistantMsg := domain.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      domain.ChatRoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Append(ctx, &assistantMsg); err != nil {
		return nil, err
	}
	return &assistantMsg, nil
}

func (s *ChatService) History(ctx context.Context, userID uuid.UUID) ([]domain.ChatMessage, error) {
	return s.messages.History(ctx, userID, chatHistoryWindow)
}

func (s *ChatService) refund(ctx context.Context, userID uuid.UUID) {
	if err := s.xp.Refund(ctx, userID, s.messageCost); err != nil {
		s.log.Errorw("chat refund failed", "user_id", userID, "amount", s.messageCost, "error", err)
	}
}
