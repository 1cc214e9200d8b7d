package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/mission42/constellation-intent/internal/config"
	"github.com/mission42/constellation-intent/internal/models"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
)

const natsModule = "nats"

type NATSTransport struct {
	conn     *nats.Conn
	config   *config.Config
	resolver Resolver
	log      logger.ILogger
	sub      *nats.Subscription
}

func NewNATSTransport(cfg *config.Config, resolver Resolver, log logger.ILogger) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info(natsModule, "connected to NATS server", map[string]interface{}{"url": cfg.NatsURL})

	return &NATSTransport{
		conn:     conn,
		config:   cfg,
		resolver: resolver,
		log:      log,
	}, nil
}

// SetResolver wires the resolver after construction, since the resolver itself
// publishes its events through this transport.
func (nt *NATSTransport) SetResolver(resolver Resolver) {
	nt.resolver = resolver
}

// Start subscribes to chat requests. Replies carry a ChatResponse or {"error": ...}.
func (nt *NATSTransport) Start() error {
	if nt.resolver == nil {
		return fmt.Errorf("nats transport has no resolver")
	}
	sub, err := nt.conn.Subscribe(nt.config.NatsRequestSubject, nt.handleChatRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsRequestSubject, err)
	}
	nt.sub = sub

	nt.log.Info(natsModule, "subscribed", map[string]interface{}{"subject": nt.config.NatsRequestSubject})
	return nil
}

func (nt *NATSTransport) handleChatRequest(msg *nats.Msg) {
	data := nt.reply(msg.Data)
	if data == nil {
		return
	}
	if err := msg.Respond(data); err != nil {
		nt.log.Error(natsModule, "failed to send response", map[string]interface{}{"error": err.Error()})
	}
}

// reply resolves one request payload into the reply payload.
func (nt *NATSTransport) reply(payload []byte) []byte {
	var body interface{}

	request, err := decodeChatRequest(payload)
	if err != nil {
		nt.log.Warn(natsModule, "invalid request", map[string]interface{}{"error": err.Error()})
		body = errorResponse{Error: err.Error()}
	} else {
		// The LLM timeout bounds the model call; this bounds the whole turn.
		ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout+nt.config.LLMTimeout)
		defer cancel()

		response, err := nt.resolver.Resolve(ctx, request)
		if err != nil {
			status, errBody := mapResolveError(err)
			if status == fiber.StatusInternalServerError {
				nt.log.Error(natsModule, "error resolving chat request", map[string]interface{}{"error": err.Error()})
			}
			body = errBody
		} else {
			body = response
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		nt.log.Error(natsModule, "failed to marshal response", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return data
}

// PublishCreated announces a created constellation on the event subject.
func (nt *NATSTransport) PublishCreated(_ context.Context, event models.CreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal created event: %w", err)
	}
	if err := nt.conn.Publish(nt.config.NatsEventSubject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", nt.config.NatsEventSubject, err)
	}
	return nil
}

func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		if err := nt.sub.Drain(); err != nil {
			nt.log.Warn(natsModule, "failed to drain subscription", map[string]interface{}{"error": err.Error()})
		}
	}
	if nt.conn != nil {
		nt.conn.Close()
		nt.log.Info(natsModule, "NATS connection closed", nil)
	}
	return nil
}
