package chatpod

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"
)

// Delta is one increment of a streaming completion. Exactly one of Content
// or a terminal FinishReason is meaningful per delta; anything else is
// ignored by the aggregator.
type Delta struct {
	Content      string
	FinishReason string
}

// DeltaStream is the minimal stream shape the aggregator consumes. It
// mirrors ssestream.Stream so the OpenAI client adapts trivially, and tests
// can drive synthetic streams.
type DeltaStream interface {
	Next() bool
	Current() Delta
	Err() error
	Close() error
}

// LLM defines the contract the turn pipeline relies on to reach a
// language-model provider. Implementations may add helper methods but only
// StreamChat is used by the rest of the codebase.
type LLM interface {
	// StreamChat issues a streaming chat completion over the full history.
	StreamChat(ctx context.Context, model string, history []Turn, temperature float64) (DeltaStream, error)
}

// OpenAI implements LLM with the official SDK.
type OpenAI struct {
	client openai.Client
}

var _ LLM = (*OpenAI)(nil)

func NewOpenAI(apiKey, baseURL string) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...)}
}

func (o *OpenAI) StreamChat(ctx context.Context, model string, history []Turn, temperature float64) (DeltaStream, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    openaiMessages(history),
		Temperature: openai.Float(temperature),
	}
	return &openaiStream{stream: o.client.Chat.Completions.NewStreaming(ctx, params)}, nil
}

func openaiMessages(history []Turn) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, t := range history {
		switch t.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(t.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(t.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(t.Content))
		}
	}
	return out
}

// openaiStream adapts the SDK's SSE stream to DeltaStream.
type openaiStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	cur    Delta
}

func (s *openaiStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		s.cur = Delta{
			Content:      choice.Delta.Content,
			FinishReason: string(choice.FinishReason),
		}
		return true
	}
	return false
}

func (s *openaiStream) Current() Delta { return s.cur }

func (s *openaiStream) Err() error { return s.stream.Err() }

func (s *openaiStream) Close() error { return s.stream.Close() }
