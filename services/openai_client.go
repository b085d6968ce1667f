package services

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// ChatOptions tunes a single completion call.
type ChatOptions struct {
	Temperature  float32
	JSONResponse bool
}

// ChatResult is the gateway's result type. This is the only place raw
// transport errors are translated; nothing upstream ever sees one.
type ChatResult struct {
	OK      bool
	Content string
	Err     string
}

// ChatClient is the single boundary to the external completion
// capability. One call per invocation, no retries.
type ChatClient interface {
	Chat(ctx context.Context, model, system, user string, opts ChatOptions) ChatResult
}

type openAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds a ChatClient against any OpenAI-compatible
// endpoint. An empty baseURL keeps the library default.
func NewOpenAIClient(apiKey, baseURL string) ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIClient{client: openai.NewClientWithConfig(cfg)}
}

// buildChatRequest assembles the wire request. The temperature field
// is omitempty in go-openai, so a literal 0 would never reach the
// provider and sampling would run at the provider default; requests
// for 0 are sent as the smallest encodable value instead, keeping
// classifier, SQL generation and docs synthesis deterministic.
func buildChatRequest(model, system, user string, opts ChatOptions) openai.ChatCompletionRequest {
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if opts.JSONResponse {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

func (c *openAIClient) Chat(ctx context.Context, model, system, user string, opts ChatOptions) ChatResult {
	resp, err := c.client.CreateChatCompletion(ctx, buildChatRequest(model, system, user, opts))
	if err != nil {
		return ChatResult{Err: fmt.Sprintf("completion call failed: %v", err)}
	}
	if len(resp.Choices) == 0 {
		return ChatResult{Err: "completion returned no choices"}
	}
	return ChatResult{OK: true, Content: resp.Choices[0].Message.Content}
}
