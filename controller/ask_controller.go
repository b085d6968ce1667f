package controller

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tlcdata/ai-agent/models"
	"github.com/tlcdata/ai-agent/services"
)

// AskController handles the HTTP surface. It depends on the classifier
// and the three answer strategies injected from main.go.
type AskController struct {
	classifier *services.IntentClassifier
	strategies map[models.Intent]services.AnswerStrategy
}

// NewAskController wires the classifier to the strategy per intent.
func NewAskController(classifier *services.IntentClassifier, generic, db, docs services.AnswerStrategy) *AskController {
	return &AskController{
		classifier: classifier,
		strategies: map[models.Intent]services.AnswerStrategy{
			models.IntentGeneric: generic,
			models.IntentDB:      db,
			models.IntentDocs:    docs,
		},
	}
}

// Health is the Gin handler for GET /health and GET /.
func (c *AskController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "api is running"})
}

// Ask is the Gin handler for POST /ask. It validates the question,
// classifies it exactly once and dispatches to exactly one strategy;
// there is no fallback chaining between strategies. Anything escaping
// a strategy lands in the recover below, the single top-level
// safety net.
func (c *AskController) Ask(ctx *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			ctx.JSON(http.StatusInternalServerError, models.AnswerEnvelope{
				Error: fmt.Sprintf("unexpected failure: %v", r),
			})
		}
	}()

	// A malformed body degrades to an empty question and is rejected
	// below, before any model call is paid for.
	var req models.AskRequest
	_ = ctx.ShouldBindJSON(&req)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		ctx.JSON(http.StatusBadRequest, models.AnswerEnvelope{Error: "question is required"})
		return
	}

	requestID := uuid.New().String()
	log.Printf("CONTROLLER: [%s] question received", requestID)

	intent := c.classifier.Classify(ctx.Request.Context(), question)
	envelope := c.strategies[intent].Answer(ctx.Request.Context(), question, req.Metadata)

	log.Printf("CONTROLLER: [%s] intent=%s ok=%t", requestID, intent, envelope.OK)

	// Strategy-level failures are a valid outcome of a well-formed
	// request and stay HTTP 200.
	ctx.JSON(http.StatusOK, envelope)
}
