package services

import (
	"context"

	"github.com/tlcdata/ai-agent/models"
)

// AnswerStrategy answers one already-classified question. Strategies
// catch their own foreseeable failures and return {ok:false} envelopes
// instead of propagating; only a genuine bug should panic out of one.
type AnswerStrategy interface {
	Answer(ctx context.Context, question string, metadata map[string]interface{}) models.AnswerEnvelope
}
