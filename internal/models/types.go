package models

import (
	"encoding/json"
	"time"
)

// Inbound chat request (HTTP body or NATS payload)
type ChatRequest struct {
	Messages []ConversationMessage `json:"messages" validate:"required,min=1,dive"`
}

type ConversationMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"` // "user" or "assistant"
	Content string `json:"content"`
}

// Response returned to the chat front-end
type ChatResponse struct {
	ID          string       `json:"id"`
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	ToolResults []ToolResult `json:"toolResults,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ToolResult reports what happened to one model tool call.
type ToolResult struct {
	ToolCallID string          `json:"toolCallId"`
	Name       string          `json:"name"`
	Result     *CreationResult `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type CreationResult struct {
	ConstellationID string               `json:"constellationId,omitempty"`
	Request         ConstellationRequest `json:"request"`
	Message         string               `json:"message"`
}

// ConstellationRequest is a validated creation request.
type ConstellationRequest struct {
	NumSatellites int       `json:"numSatellites"`
	NumPlanes     int       `json:"numPlanes"`
	Altitudes     []float64 `json:"altitudes"`
}

// ToolInvocation is a model-originated tool call. Arguments are untrusted.
type ToolInvocation struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Outcome of resolving one candidate (or the whole turn when nothing was dispatched)
type Outcome struct {
	Kind   string `json:"kind"` // "reply", "created", "rejected"
	Text   string `json:"text"`
	Reason string `json:"reason,omitempty"`
}

// Outcome kinds
const (
	OutcomeReply    = "reply"
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
)

const RoleAssistant = "assistant"

// Error codes
const (
	ErrorInvalidInput = "INVALID_INPUT"
	ErrorLLMTimeout   = "LLM_API_TIMEOUT"
	ErrorLLMFailed    = "LLM_API_FAILED"
	ErrorInternal     = "INTERNAL_ERROR"
)

// CreatedEvent is published after a constellation was created.
type CreatedEvent struct {
	ConstellationID string               `json:"constellationId,omitempty"`
	Request         ConstellationRequest `json:"request"`
	CreatedAt       time.Time            `json:"createdAt"`
}
