package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mission42/constellation-intent/internal/models"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
)

func TestNewTranscript_KeepsOrderAndSkipsUnknownRoles(t *testing.T) {
	ctx := context.Background()
	tr, err := NewTranscript(ctx, []models.ConversationMessage{
		{Role: "user", Content: "one"},
		{Role: "system", Content: "ignored"},
		{Role: "assistant", Content: "two"},
		{Role: "user", Content: "three"},
	}, logger.NewNopLogger())
	require.NoError(t, err)

	msgs, err := tr.Messages(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.ConversationMessage{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two"},
		{Role: "user", Content: "three"},
	}, msgs)
}

func TestWindow(t *testing.T) {
	ctx := context.Background()
	var history []models.ConversationMessage
	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		history = append(history, models.ConversationMessage{Role: "user", Content: c})
	}
	tr, err := NewTranscript(ctx, history, logger.NewNopLogger())
	require.NoError(t, err)

	last, err := tr.Window(ctx, 6)
	require.NoError(t, err)
	require.Len(t, last, 6)
	require.Equal(t, "c", last[0].Content)
	require.Equal(t, "h", last[5].Content)

	all, err := tr.Window(ctx, 20)
	require.NoError(t, err)
	require.Len(t, all, 8)

	all, err = tr.Window(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 8)
}

func TestNewTranscript_Empty(t *testing.T) {
	ctx := context.Background()
	tr, err := NewTranscript(ctx, nil, logger.NewNopLogger())
	require.NoError(t, err)

	msgs, err := tr.Messages(ctx)
	require.NoError(t, err)
	require.Empty(t, msgs)
}
