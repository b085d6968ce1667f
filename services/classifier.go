package services

import (
	"context"
	"encoding/json"

	"github.com/tlcdata/ai-agent/models"
)

const classifierSystemPrompt = `You are a strict classifier. ` +
	`Respond with a JSON object of the form {"intent": "generic|db|docs"}. ` +
	`Use "db" for questions about data, tables or SQL; ` +
	`use "docs" for questions that depend on company documents; ` +
	`otherwise use "generic".`

// IntentClassifier maps a free-text question onto the strategy that
// answers it, using a single deterministic completion call.
type IntentClassifier struct {
	chat  ChatClient
	model string
}

func NewIntentClassifier(chat ChatClient, model string) *IntentClassifier {
	return &IntentClassifier{chat: chat, model: model}
}

// Classify issues exactly one completion call and fails open: any
// gateway failure, parse failure or out-of-range value degrades to
// generic, the least-privileged strategy, rather than erroring out.
func (c *IntentClassifier) Classify(ctx context.Context, question string) models.Intent {
	result := c.chat.Chat(ctx, c.model, classifierSystemPrompt, question, ChatOptions{JSONResponse: true})
	if !result.OK {
		return models.IntentGeneric
	}

	var decoded struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(result.Content), &decoded); err != nil {
		return models.IntentGeneric
	}

	intent, _ := models.ParseIntent(decoded.Intent)
	return intent
}
