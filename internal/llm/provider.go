package llm

import (
	"context"
	"encoding/json"
)

// Provider is a single-prompt LLM backend.
type Provider interface {
	// Generate sends req and returns the model's reply. When req.Purpose
	// has a registered schema the backend is asked for JSON in that shape.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request is one system prompt plus one user prompt. Question generation
// never needs a longer conversation.
type Request struct {
	Purpose     Purpose
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

func (r Request) schema() *Schema {
	return SchemaFor(r.Purpose)
}

// StopReason is why the model stopped, normalized across providers.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// reply is a backend's answer before the shared truncation check.
type reply struct {
	content json.RawMessage
	usage   Usage
	model   string
	stop    StopReason
}

func (r reply) response() (*Response, error) {
	if r.stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: r.content}
	}
	if r.usage.TotalTokens == 0 {
		r.usage.TotalTokens = r.usage.InputTokens + r.usage.OutputTokens
	}
	return &Response{Content: r.content, Usage: r.usage, Model: r.model, StopReason: r.stop}, nil
}
