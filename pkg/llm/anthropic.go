package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/qa-canvas/canvasd/pkg/config"
	"github.com/qa-canvas/canvasd/pkg/models"
)

const defaultMaxTokens = 8192

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	name    string
	model   string
	timeout time.Duration
	client  anthropic.Client
}

// NewAnthropicProvider builds a provider from its configuration. A
// resolved key on the config wins over the configured environment
// variable.
func NewAnthropicProvider(name string, cfg *config.ProviderConfig) (*AnthropicProvider, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		name:    name,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  anthropic.NewClient(opts...),
	}, nil
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return p.name }

// Model implements Provider.
func (p *AnthropicProvider) Model() string { return p.model }

func (p *AnthropicProvider) params(req *Request) anthropic.MessageNewParams {
	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens != nil {
		maxTokens = int64(*req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages:  toAnthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if len(req.Tools) > 0 {
		params.Tools = toAnthropicTools(req.Tools)
	}
	return params
}

func toAnthropicTools(tools []Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema struct {
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		}
		// A schema that fails to parse still registers the tool; the
		// model just gets no input constraints.
		_ = json.Unmarshal(t.Parameters, &schema)
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema.Properties,
					Required:   schema.Required,
				},
			},
		})
	}
	return out
}

func toAnthropicMessages(messages []models.ChatMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		switch msg.Role {
		case models.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(block))
		default:
			// System content rides in params.System; anything else is user input
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

// GenerateText implements Provider.
func (p *AnthropicProvider) GenerateText(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	message, err := p.client.Messages.New(ctx, p.params(req))
	if err != nil {
		return nil, err
	}

	var text string
	var toolCalls []ToolCall
	for _, block := range message.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			toolCalls = append(toolCalls, ToolCall{Name: block.Name, Input: block.Input})
		}
	}
	if text == "" && len(toolCalls) == 0 {
		return nil, errors.New("provider returned an empty response")
	}

	return &Response{
		Text:      text,
		ToolCalls: toolCalls,
		Provider:  p.name,
		Model:     p.model,
		Usage: Usage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		},
	}, nil
}

// StreamText implements Provider.
func (p *AnthropicProvider) StreamText(ctx context.Context, req *Request) (<-chan Chunk, error) {
	chunks := make(chan Chunk, 64)

	go func() {
		defer close(chunks)

		ctx, cancel := p.withTimeout(ctx)
		defer cancel()

		stream := p.client.Messages.NewStreaming(ctx, p.params(req))
		message := anthropic.Message{}
		for stream.Next() {
			event := stream.Current()
			if err := message.Accumulate(event); err != nil {
				emit(ctx, chunks, &ErrorChunk{Err: err})
				return
			}
			switch delta := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta.Delta.Text != "" {
					if !emit(ctx, chunks, &TextChunk{Content: delta.Delta.Text}) {
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			emit(ctx, chunks, &ErrorChunk{Err: err})
			return
		}

		emit(ctx, chunks, &DoneChunk{Usage: Usage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		}})
	}()

	return chunks, nil
}

func (p *AnthropicProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// emit sends a chunk unless the context is gone. Returns false when the
// receiver stopped listening.
func emit(ctx context.Context, chunks chan<- Chunk, chunk Chunk) bool {
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
