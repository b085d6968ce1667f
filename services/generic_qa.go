package services

import (
	"context"

	"github.com/tlcdata/ai-agent/models"
)

const genericSystemPrompt = "You are a helpful, objective and safe assistant. Answer clearly and concisely."

// GenericQAService forwards the question to the gateway with a
// permissive instruction. The only strategy sampling above zero
// temperature: open-ended answers are allowed to vary.
type GenericQAService struct {
	chat  ChatClient
	model string
}

func NewGenericQAService(chat ChatClient, model string) *GenericQAService {
	return &GenericQAService{chat: chat, model: model}
}

func (s *GenericQAService) Answer(ctx context.Context, question string, metadata map[string]interface{}) models.AnswerEnvelope {
	result := s.chat.Chat(ctx, s.model, genericSystemPrompt, question, ChatOptions{Temperature: 0.2})
	if !result.OK {
		return models.AnswerEnvelope{Intent: models.IntentGeneric, Error: result.Err}
	}
	return models.AnswerEnvelope{OK: true, Intent: models.IntentGeneric, Answer: result.Content}
}
