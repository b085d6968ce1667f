package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tlcdata/ai-agent/models"
	"github.com/tlcdata/ai-agent/services"
)

// scriptedChat returns canned gateway results in order.
type scriptedChat struct {
	results []services.ChatResult
	calls   int
}

func (s *scriptedChat) Chat(ctx context.Context, model, system, user string, opts services.ChatOptions) services.ChatResult {
	s.calls++
	if len(s.results) == 0 {
		return services.ChatResult{OK: true, Content: `{"intent": "generic"}`}
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result
}

type stubStrategy struct {
	envelope models.AnswerEnvelope
	calls    int
}

func (s *stubStrategy) Answer(ctx context.Context, question string, metadata map[string]interface{}) models.AnswerEnvelope {
	s.calls++
	return s.envelope
}

type panicStrategy struct{}

func (panicStrategy) Answer(ctx context.Context, question string, metadata map[string]interface{}) models.AnswerEnvelope {
	panic("nil connection")
}

func newTestRouter(chat services.ChatClient, generic, db, docs services.AnswerStrategy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	classifier := services.NewIntentClassifier(chat, "classifier-model")
	askController := NewAskController(classifier, generic, db, docs)

	router := gin.New()
	router.GET("/health", askController.Health)
	router.GET("/", askController.Health)
	router.POST("/ask", askController.Ask)
	return router
}

func postAsk(t *testing.T, router *gin.Engine, body string) (*httptest.ResponseRecorder, models.AnswerEnvelope) {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	var envelope models.AnswerEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return recorder, envelope
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&scriptedChat{}, &stubStrategy{}, &stubStrategy{}, &stubStrategy{})

	for _, path := range []string{"/health", "/"} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		require.JSONEq(t, `{"message": "api is running"}`, recorder.Body.String())
	}
}

func TestAskRejectsEmptyQuestionBeforeClassification(t *testing.T) {
	chat := &scriptedChat{}
	generic := &stubStrategy{}
	router := newTestRouter(chat, generic, &stubStrategy{}, &stubStrategy{})

	for _, body := range []string{`{}`, `{"question": ""}`, `{"question": "   "}`, `not json`} {
		recorder, envelope := postAsk(t, router, body)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		require.False(t, envelope.OK)
		require.Equal(t, "question is required", envelope.Error)
	}
	require.Zero(t, chat.calls, "rejection must happen before any model call")
	require.Zero(t, generic.calls)
}

func TestAskRoutesGenericQuestion(t *testing.T) {
	chat := &scriptedChat{results: []services.ChatResult{{OK: true, Content: `{"intent": "generic"}`}}}
	generic := &stubStrategy{envelope: models.AnswerEnvelope{OK: true, Intent: models.IntentGeneric, Answer: "Paris."}}
	db := &stubStrategy{}
	docs := &stubStrategy{}
	router := newTestRouter(chat, generic, db, docs)

	recorder, envelope := postAsk(t, router, `{"question": "What is the capital of France?"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, envelope.OK)
	require.Equal(t, models.IntentGeneric, envelope.Intent)
	require.NotEmpty(t, envelope.Answer)
	require.Equal(t, 1, generic.calls)
	require.Zero(t, db.calls)
	require.Zero(t, docs.calls)
}

func TestAskRoutesDBQuestionExactlyOnce(t *testing.T) {
	chat := &scriptedChat{results: []services.ChatResult{{OK: true, Content: `{"intent": "db"}`}}}
	db := &stubStrategy{envelope: models.AnswerEnvelope{Intent: models.IntentDB, Error: "SQL execution failed: connection refused"}}
	generic := &stubStrategy{}
	router := newTestRouter(chat, generic, db, &stubStrategy{})

	recorder, envelope := postAsk(t, router, `{"question": "How many trips in January?"}`)

	// A strategy failure is a valid outcome: HTTP 200, ok:false, and
	// no fallback to another strategy.
	require.Equal(t, http.StatusOK, recorder.Code)
	require.False(t, envelope.OK)
	require.Equal(t, 1, db.calls)
	require.Zero(t, generic.calls)
}

func TestAskUnknownIntentFallsBackToGeneric(t *testing.T) {
	chat := &scriptedChat{results: []services.ChatResult{{OK: true, Content: `{"intent": "spreadsheet"}`}}}
	generic := &stubStrategy{envelope: models.AnswerEnvelope{OK: true, Intent: models.IntentGeneric, Answer: "hi"}}
	router := newTestRouter(chat, generic, &stubStrategy{}, &stubStrategy{})

	_, envelope := postAsk(t, router, `{"question": "hello there"}`)

	require.True(t, envelope.OK)
	require.Equal(t, 1, generic.calls)
}

func TestAskWrapsEscapedPanics(t *testing.T) {
	chat := &scriptedChat{results: []services.ChatResult{{OK: true, Content: `{"intent": "db"}`}}}
	router := newTestRouter(chat, &stubStrategy{}, panicStrategy{}, &stubStrategy{})

	recorder, envelope := postAsk(t, router, `{"question": "How many trips?"}`)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.False(t, envelope.OK)
	require.Contains(t, envelope.Error, "unexpected failure: nil connection")
}

func TestAskPassesMetadataThrough(t *testing.T) {
	chat := &scriptedChat{results: []services.ChatResult{{OK: true, Content: `{"intent": "generic"}`}}}
	generic := &recordingStrategy{}
	router := newTestRouter(chat, generic, &stubStrategy{}, &stubStrategy{})

	_, _ = postAsk(t, router, `{"question": "hi", "metadata": {"channel": "slack"}}`)

	require.Equal(t, map[string]interface{}{"channel": "slack"}, generic.metadata)
}

type recordingStrategy struct {
	metadata map[string]interface{}
}

func (r *recordingStrategy) Answer(ctx context.Context, question string, metadata map[string]interface{}) models.AnswerEnvelope {
	r.metadata = metadata
	return models.AnswerEnvelope{OK: true, Intent: models.IntentGeneric, Answer: "ok"}
}
