package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mission42/constellation-intent/internal/models"
)

func user(content string) models.ConversationMessage {
	return models.ConversationMessage{Role: "user", Content: content}
}

func assistant(content string) models.ConversationMessage {
	return models.ConversationMessage{Role: "assistant", Content: content}
}

func TestGate_ReadyAfterConfirmation(t *testing.T) {
	g := NewGate(DefaultWindow)
	msgs := []models.ConversationMessage{
		user("I want 20 satellites"),
		user("across 5 planes at 500 km"),
		user("yes, generate it"),
	}
	require.True(t, g.Ready(msgs))
}

func TestGate_NotReadyWithoutConfirmation(t *testing.T) {
	g := NewGate(DefaultWindow)
	require.False(t, g.Ready([]models.ConversationMessage{user("I want 20 satellites and 5 planes at 500km")}))
}

func TestGate_Signals(t *testing.T) {
	cases := []struct {
		name  string
		msgs  []models.ConversationMessage
		ready bool
	}{
		{name: "confirmation without digits", msgs: []models.ConversationMessage{user("yes please build satellites")}, ready: false},
		{name: "digits and confirmation without domain words", msgs: []models.ConversationMessage{user("yes, 42")}, ready: false},
		{name: "altitude only mention", msgs: []models.ConversationMessage{user("go ahead at 550 km")}, ready: true},
		{name: "orbital mention", msgs: []models.ConversationMessage{user("3 orbital rings, do it")}, ready: true},
		{name: "case insensitive", msgs: []models.ConversationMessage{user("10 SATELLITES"), user("CONFIRM")}, ready: true},
		{name: "assistant content counts", msgs: []models.ConversationMessage{assistant("So 12 satellites over 3 planes at 600 km?"), user("proceed")}, ready: true},
		{name: "empty", msgs: nil, ready: false},
	}
	g := NewGate(DefaultWindow)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ready, g.Ready(tc.msgs))
		})
	}
}

func TestGate_OnlyLooksAtWindow(t *testing.T) {
	msgs := []models.ConversationMessage{
		user("20 satellites, 5 planes, 500 km"),
		assistant("Anything else?"),
		user("hmm"),
		assistant("Tell me more"),
		user("ok"),
		assistant("Sure"),
		user("yes"),
	}
	g := NewGate(DefaultWindow)
	s := g.Evaluate(msgs)
	require.False(t, s.HasDigit)
	require.True(t, s.Confirmed)
	require.False(t, s.Ready)

	wide := NewGate(10)
	require.True(t, wide.Ready(msgs))
}

func TestNewGate_DefaultsWindow(t *testing.T) {
	require.Equal(t, DefaultWindow, NewGate(0).Window)
	require.Equal(t, DefaultWindow, NewGate(-2).Window)
	require.Equal(t, 3, NewGate(3).Window)
}
