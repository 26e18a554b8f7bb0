package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"lingoplatform/internal/domain"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Chat отправляет системную инструкцию + историю диалога и возвращает
// ответ ассистента.
func (o *OpenAIClient) Chat(ctx context.Context, system string, turns []domain.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Role == domain.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", domain.ErrExternalService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrExternalService)
	}
	return resp.Choices[0].Message.Content, nil
}

// Evaluate — непрозрачный оракул оценивания: промпт с рубрикой на входе,
// свободный текст на выходе. Парсинг вердикта — забота вызывающего.
func (o *OpenAIClient) Evaluate(ctx context.Context, prompt string) (string, error) {
	return o.Chat(ctx, "You are a strict IELTS examiner. Follow the rubric exactly.", []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: prompt},
	})
}
