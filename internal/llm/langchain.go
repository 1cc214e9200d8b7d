package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mission42/constellation-intent/internal/models"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// generator is the part of llms.Model the adapter needs.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LangChainProvider adapts a LangChainGo model to Provider.
type LangChainProvider struct {
	model generator
}

var _ Provider = (*LangChainProvider)(nil)

func NewLangChainProvider(model generator) (*LangChainProvider, error) {
	if model == nil {
		return nil, errors.New("llm: model must not be nil")
	}
	return &LangChainProvider{model: model}, nil
}

// NewProvider builds the configured backend. Ollama is the default, matching a
// local llama3.2 deployment; "openai" also covers OpenAI-compatible servers.
func NewProvider(kind, baseURL, model, apiKey string) (*LangChainProvider, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(model)}
		if baseURL != "" {
			opts = append(opts, ollama.WithServerURL(baseURL))
		}
		m, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("llm: create ollama client: %w", err)
		}
		return NewLangChainProvider(m)
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(model), openai.WithToken(apiKey)}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("llm: create openai client: %w", err)
		}
		return NewLangChainProvider(m)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", kind)
	}
}

func (p *LangChainProvider) Generate(ctx context.Context, request *Request) (*Generation, error) {
	if request == nil {
		return nil, errors.New("llm: request must not be nil")
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, request.Prompt),
	}

	var opts []llms.CallOption
	if request.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(request.MaxTokens))
	}
	if len(request.Tools) > 0 {
		opts = append(opts, llms.WithTools(toLangChainTools(request.Tools)))
	}

	resp, err := p.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("llm: no choices in response")
	}

	choice := resp.Choices[0]
	gen := &Generation{Text: choice.Content}

	for i, call := range choice.ToolCalls {
		if call.FunctionCall == nil {
			continue
		}
		id := call.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		gen.ToolCalls = append(gen.ToolCalls, models.ToolInvocation{
			ID:        id,
			Name:      call.FunctionCall.Name,
			Arguments: rawArguments(call.FunctionCall.Arguments),
		})
	}
	// Older function-calling backends only fill FuncCall.
	if len(gen.ToolCalls) == 0 && choice.FuncCall != nil {
		gen.ToolCalls = append(gen.ToolCalls, models.ToolInvocation{
			ID:        "call_0",
			Name:      choice.FuncCall.Name,
			Arguments: rawArguments(choice.FuncCall.Arguments),
		})
	}

	return gen, nil
}

func toLangChainTools(defs []ToolDefinition) []llms.Tool {
	tools := make([]llms.Tool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return tools
}

// rawArguments keeps valid JSON as is and quotes anything else, so the
// extractor sees the model's output instead of a decode error here.
func rawArguments(args string) json.RawMessage {
	args = strings.TrimSpace(args)
	if args == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(args)) {
		return json.RawMessage(args)
	}
	quoted, _ := json.Marshal(args)
	return quoted
}
