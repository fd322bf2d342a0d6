package scorer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/panefit/panefit/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIScorer scores pane content using an OpenAI-compatible Chat
// Completions API. Works with OpenAI, Azure OpenAI, and any
// OpenAI-compatible endpoint.
type OpenAIScorer struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// OpenAIConfig holds configuration for the OpenAI scorer.
type OpenAIConfig struct {
	// BaseURL is the API endpoint.
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name (e.g., "gpt-4o-mini").
	Model string
	// MaxTokens is the maximum number of completion tokens.
	// For reasoning models this must be large enough to accommodate
	// both reasoning tokens and output content.
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers.
	ExtraHeaders map[string]string
}

// NewOpenAIScorer creates a new OpenAI-compatible scorer.
func NewOpenAIScorer(cfg OpenAIConfig) *OpenAIScorer {
	var opts []option.RequestOption

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	client := openai.NewClient(opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &OpenAIScorer{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Name returns "openai".
func (s *OpenAIScorer) Name() string {
	return "openai"
}

// Model returns the model name.
func (s *OpenAIScorer) Model() string {
	return s.model
}

// Score sends pane content to an OpenAI-compatible API and returns its score.
func (s *OpenAIScorer) Score(ctx context.Context, content string) (model.ExternalScore, error) {
	userMessage := UserPromptTemplate + truncateContent(content)

	// GenAI span named "{operation} {model}" per OTel semantic conventions.
	ctx, span := scoreTracer.Start(ctx, "chat "+s.model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			// GenAI semantic conventions (required + recommended)
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "openai"),
			attribute.String("gen_ai.request.model", s.model),
			attribute.Int64("gen_ai.request.max_tokens", s.maxTokens),

			// Langfuse-specific: ensure this shows as a "generation"
			attribute.String("langfuse.observation.type", "generation"),
		),
	)
	defer span.End()

	// Record input (system + user messages as JSON)
	inputMessages := []map[string]string{
		{"role": "system", "content": SystemPrompt},
		{"role": "user", "content": userMessage},
	}
	if inputJSON, err := json.Marshal(inputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.input.messages", string(inputJSON)))
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(userMessage),
		},
		MaxCompletionTokens: openai.Int(s.maxTokens),
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return model.ExternalScore{}, fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return model.ExternalScore{}, fmt.Errorf("openai API returned empty response")
	}

	rawText := resp.Choices[0].Message.Content

	// Record response attributes
	span.SetAttributes(
		attribute.String("gen_ai.response.model", resp.Model),
		attribute.String("gen_ai.response.id", resp.ID),
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
	)
	if resp.Choices[0].FinishReason != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{string(resp.Choices[0].FinishReason)}))
	}

	// Record output
	outputMessages := []map[string]string{
		{"role": "assistant", "content": rawText},
	}
	if outputJSON, err := json.Marshal(outputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.output.messages", string(outputJSON)))
	}

	score, err := parseScore(rawText)
	if err != nil {
		return model.ExternalScore{}, err
	}
	score.Usage = model.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	return score, nil
}
