package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/qa-canvas/canvasd/pkg/config"
	"github.com/qa-canvas/canvasd/pkg/models"
)

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint
// through langchaingo.
type OpenAIProvider struct {
	name    string
	model   string
	timeout time.Duration
	client  *openai.LLM
}

// NewOpenAIProvider builds a provider from its configuration. A
// resolved key on the config wins over the configured environment
// variable.
func NewOpenAIProvider(name string, cfg *config.ProviderConfig) (*OpenAIProvider, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
	}

	opts := []openai.Option{
		openai.WithToken(key),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build openai client: %w", err)
	}

	return &OpenAIProvider{
		name:    name,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  client,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return p.name }

// Model implements Provider.
func (p *OpenAIProvider) Model() string { return p.model }

func toContent(req *Request) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, msg := range req.Messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case models.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case models.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	return content
}

func (p *OpenAIProvider) callOptions(req *Request) []llms.CallOption {
	var opts []llms.CallOption
	if req.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*req.Temperature))
	}
	if req.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*req.MaxTokens))
	}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(toLangchainTools(req.Tools)))
	}
	return opts
}

func toLangchainTools(tools []Tool) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		var params any
		_ = json.Unmarshal(t.Parameters, &params)
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

// GenerateText implements Provider.
func (p *OpenAIProvider) GenerateText(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.client.GenerateContent(ctx, toContent(req), p.callOptions(req)...)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("provider returned an empty response")
	}

	choice := resp.Choices[0]
	var toolCalls []ToolCall
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		toolCalls = append(toolCalls, ToolCall{
			Name:  tc.FunctionCall.Name,
			Input: json.RawMessage(tc.FunctionCall.Arguments),
		})
	}
	if choice.Content == "" && len(toolCalls) == 0 {
		return nil, errors.New("provider returned an empty response")
	}

	return &Response{
		Text:      choice.Content,
		ToolCalls: toolCalls,
		Provider:  p.name,
		Model:     p.model,
	}, nil
}

// StreamText implements Provider.
func (p *OpenAIProvider) StreamText(ctx context.Context, req *Request) (<-chan Chunk, error) {
	chunks := make(chan Chunk, 64)

	go func() {
		defer close(chunks)

		ctx, cancel := p.withTimeout(ctx)
		defer cancel()

		opts := append(p.callOptions(req), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			if !emit(ctx, chunks, &TextChunk{Content: string(chunk)}) {
				return ctx.Err()
			}
			return nil
		}))

		if _, err := p.client.GenerateContent(ctx, toContent(req), opts...); err != nil {
			emit(ctx, chunks, &ErrorChunk{Err: err})
			return
		}
		emit(ctx, chunks, &DoneChunk{})
	}()

	return chunks, nil
}

func (p *OpenAIProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}
