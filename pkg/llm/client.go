// Package llm is the provider gateway: a weighted failover chain of AI
// providers behind one interface, with per-provider retry, circuit
// breaking, and attempt metrics.
package llm

import (
	"context"
	"encoding/json"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// Provider is one upstream AI endpoint. Implementations wrap a vendor
// SDK and surface raw errors; the gateway owns classification, retry,
// and failover.
type Provider interface {
	// Name identifies the provider in health maps and metrics.
	Name() string

	// Model returns the model this provider is configured with.
	Model() string

	// GenerateText sends a conversation and returns the full response.
	GenerateText(ctx context.Context, req *Request) (*Response, error)

	// StreamText sends a conversation and returns a stream of chunks.
	// The returned channel is closed when the stream completes.
	// Errors are delivered as ErrorChunk values in the channel.
	StreamText(ctx context.Context, req *Request) (<-chan Chunk, error)
}

// Request is a provider-agnostic generation request.
type Request struct {
	RequestID   string
	Operation   string // metrics label, e.g. "generate_test_cases"
	System      string
	Messages    []models.ChatMessage
	Tools       []Tool
	Temperature *float64
	MaxTokens   *int
}

// Tool describes a function the model may call instead of, or in
// addition to, answering in prose.
type Tool struct {
	Name        string
	Description string
	// Parameters is the JSON schema for the tool input.
	Parameters json.RawMessage
}

// ToolCall is one tool invocation the model requested.
type ToolCall struct {
	Name  string
	Input json.RawMessage
}

// Response is a completed generation. A response bound to tools may
// carry tool calls with or without accompanying text.
type Response struct {
	Text      string
	ToolCalls []ToolCall
	Provider  string
	Model     string
	Usage     Usage
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Chunk is the interface for all streaming chunk types.
type Chunk interface {
	chunkType() ChunkType
}

// ChunkType identifies the kind of streaming chunk.
type ChunkType string

const (
	ChunkTypeText  ChunkType = "text"
	ChunkTypeDone  ChunkType = "done"
	ChunkTypeError ChunkType = "error"
)

// TextChunk is a piece of the streamed response text.
type TextChunk struct{ Content string }

// DoneChunk closes a successful stream and carries final usage.
type DoneChunk struct{ Usage Usage }

// ErrorChunk signals a provider error mid-stream.
type ErrorChunk struct{ Err error }

func (c *TextChunk) chunkType() ChunkType  { return ChunkTypeText }
func (c *DoneChunk) chunkType() ChunkType  { return ChunkTypeDone }
func (c *ErrorChunk) chunkType() ChunkType { return ChunkTypeError }
