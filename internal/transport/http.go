package transport

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/mission42/constellation-intent/internal/config"
	"github.com/mission42/constellation-intent/internal/handlers"
	"github.com/mission42/constellation-intent/internal/models"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
)

const httpModule = "http"

// Resolver is the part of the resolver handler the transports need.
type Resolver interface {
	Resolve(ctx context.Context, request *models.ChatRequest) (*models.ChatResponse, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// rawChatRequest keeps messages raw so a non-array value is told apart from bad JSON.
type rawChatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

type ChatController struct {
	resolver Resolver
	log      logger.ILogger
}

func NewChatController(resolver Resolver, log logger.ILogger) *ChatController {
	return &ChatController{resolver: resolver, log: log}
}

func (c *ChatController) RegisterRoutes(r fiber.Router) {
	r.Get("/hello", c.Hello)

	chat := r.Group("/chat")
	chat.Post("/completion", c.Completion)
	chat.All("/completion", c.MethodNotAllowed)
}

func (c *ChatController) Hello(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"msg": "Mission42 is Online"})
}

func (c *ChatController) MethodNotAllowed(ctx *fiber.Ctx) error {
	c.log.Warn(httpModule, "invalid method", map[string]interface{}{"method": ctx.Method()})
	return ctx.Status(fiber.StatusMethodNotAllowed).JSON(errorResponse{Error: "Method not allowed"})
}

func (c *ChatController) Completion(ctx *fiber.Ctx) error {
	request, err := decodeChatRequest(ctx.Body())
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}

	c.log.Info(httpModule, "chat completion request", map[string]interface{}{"messages": len(request.Messages)})

	response, err := c.resolver.Resolve(ctx.UserContext(), request)
	if err != nil {
		status, body := mapResolveError(err)
		if status == fiber.StatusInternalServerError {
			c.log.Error(httpModule, "chat completion failed", map[string]interface{}{"error": err.Error()})
		}
		return ctx.Status(status).JSON(body)
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}

// mapResolveError keeps internals out of the response body.
func mapResolveError(err error) (int, errorResponse) {
	var rerr *handlers.Error
	if errors.As(err, &rerr) && rerr.Code == models.ErrorInvalidInput {
		return fiber.StatusBadRequest, errorResponse{Error: "Invalid messages"}
	}
	return fiber.StatusInternalServerError, errorResponse{Error: "Internal server error"}
}

func decodeChatRequest(body []byte) (*models.ChatRequest, error) {
	var raw rawChatRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.New("Invalid JSON body")
	}

	var messages []models.ConversationMessage
	if len(raw.Messages) == 0 || json.Unmarshal(raw.Messages, &messages) != nil {
		return nil, errors.New("messages must be an array")
	}
	return &models.ChatRequest{Messages: messages}, nil
}

type HTTPServer struct {
	app *fiber.App
	cfg *config.Config
	log logger.ILogger
}

func NewHTTPServer(cfg *config.Config, controller *ChatController, log logger.ILogger) *HTTPServer {
	app := fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		BodyLimit:             1 * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(otelfiber.Middleware())

	controller.RegisterRoutes(app.Group("/api"))

	return &HTTPServer{app: app, cfg: cfg, log: log}
}

func (s *HTTPServer) App() *fiber.App {
	return s.app
}

func (s *HTTPServer) Run() error {
	s.log.Info(httpModule, "server listening", map[string]interface{}{"port": s.cfg.HTTPPort})
	return s.app.Listen(":" + s.cfg.HTTPPort)
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
