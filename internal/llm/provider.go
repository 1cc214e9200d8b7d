package llm

import (
	"context"

	"github.com/mission42/constellation-intent/internal/models"
)

// Provider defines the interface for LLM providers
type Provider interface {
	Generate(ctx context.Context, request *Request) (*Generation, error)
}

// Request represents the structured request to LLM
type Request struct {
	Prompt    string
	MaxTokens int
	Tools     []ToolDefinition // nil means no tool is exposed this turn
}

// ToolDefinition declares a capability the model may invoke.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
}

// Generation represents the raw response from LLM
type Generation struct {
	Text      string
	ToolCalls []models.ToolInvocation
}
