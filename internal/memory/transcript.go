package memory

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"

	"github.com/mission42/constellation-intent/internal/models"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
)

const module = "memory"

// Transcript holds one request's conversation in a LangChainGo buffer.
// It is built per request and never shared.
type Transcript struct {
	buffer *memory.ConversationBuffer
}

// NewTranscript loads the request messages, oldest first, skipping unknown roles.
func NewTranscript(ctx context.Context, history []models.ConversationMessage, log logger.ILogger) (*Transcript, error) {
	buffer := memory.NewConversationBuffer()

	for _, msg := range history {
		var chatMsg llms.ChatMessage

		switch msg.Role {
		case "user":
			chatMsg = llms.HumanChatMessage{Content: msg.Content}
		case "assistant":
			chatMsg = llms.AIChatMessage{Content: msg.Content}
		default:
			// Resolve rejects other roles before this point; this only guards direct callers.
			log.Warn(module, "unknown message role, skipping", map[string]interface{}{"role": msg.Role})
			continue
		}

		if err := buffer.ChatHistory.AddMessage(ctx, chatMsg); err != nil {
			return nil, fmt.Errorf("failed to add message to transcript: %w", err)
		}
	}

	return &Transcript{buffer: buffer}, nil
}

// Messages returns the transcript in its original order.
func (t *Transcript) Messages(ctx context.Context) ([]models.ConversationMessage, error) {
	chatMessages, err := t.buffer.ChatHistory.Messages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	messages := make([]models.ConversationMessage, 0, len(chatMessages))
	for _, msg := range chatMessages {
		switch m := msg.(type) {
		case llms.HumanChatMessage:
			messages = append(messages, models.ConversationMessage{Role: "user", Content: m.Content})
		case llms.AIChatMessage:
			messages = append(messages, models.ConversationMessage{Role: "assistant", Content: m.Content})
		}
	}

	return messages, nil
}

// Window returns the last n messages (all of them when n <= 0 or n exceeds the length).
func (t *Transcript) Window(ctx context.Context, n int) ([]models.ConversationMessage, error) {
	messages, err := t.Messages(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(messages) {
		return messages, nil
	}
	return messages[len(messages)-n:], nil
}
