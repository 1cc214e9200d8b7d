package transport

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mission42/constellation-intent/internal/config"
	"github.com/mission42/constellation-intent/internal/models"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
)

func newTestNATS(resolver Resolver) *NATSTransport {
	cfg := &config.Config{NatsTimeout: time.Second, LLMTimeout: time.Second}
	return &NATSTransport{config: cfg, resolver: resolver, log: logger.NewNopLogger()}
}

func TestNATSReply_Success(t *testing.T) {
	resolver := &fakeResolver{response: &models.ChatResponse{ID: "1", Role: models.RoleAssistant, Content: "hello"}}

	data := newTestNATS(resolver).reply([]byte(`{"messages":[{"role":"user","content":"hi"}]}`))

	var got models.ChatResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "hello", got.Content)
	require.NotNil(t, resolver.got)
	assert.Len(t, resolver.got.Messages, 1)
}

func TestNATSReply_Errors(t *testing.T) {
	cases := []struct {
		name     string
		resolver *fakeResolver
		payload  string
		want     string
	}{
		{name: "bad payload", resolver: &fakeResolver{}, payload: `{"messages":1}`, want: "messages must be an array"},
		{name: "resolver failure", resolver: &fakeResolver{err: errors.New("boom")}, payload: `{"messages":[{"role":"user","content":"hi"}]}`, want: "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := newTestNATS(tc.resolver).reply([]byte(tc.payload))

			var got map[string]string
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tc.want, got["error"])
		})
	}
}

func TestNATSStart_RequiresResolver(t *testing.T) {
	assert.Error(t, newTestNATS(nil).Start())
}
