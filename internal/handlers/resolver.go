package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mission42/constellation-intent/internal/constellation"
	"github.com/mission42/constellation-intent/internal/creation"
	"github.com/mission42/constellation-intent/internal/intent"
	"github.com/mission42/constellation-intent/internal/llm"
	"github.com/mission42/constellation-intent/internal/memory"
	"github.com/mission42/constellation-intent/internal/models"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
	"github.com/mission42/constellation-intent/internal/prompts"
)

const (
	module = "resolver"

	defaultMaxTokens  = 512
	defaultLLMTimeout = 60 * time.Second

	malformedReason      = "the creation request was incomplete or malformed"
	dispatchFailedReason = "constellation creation failed, please retry"
	llmTimeoutReason     = "the assistant took too long to answer, please retry"
)

type CreationClient interface {
	Create(ctx context.Context, req models.ConstellationRequest) (*creation.Result, error)
	AltitudeMode() string
}

type EventPublisher interface {
	PublishCreated(ctx context.Context, event models.CreatedEvent) error
}

// ResolverHandler turns one conversation transcript into one assistant response.
// It keeps no state between requests.
type ResolverHandler struct {
	provider  llm.Provider
	extractor intent.Extractor
	creator   CreationClient
	publisher EventPublisher
	log       logger.ILogger
	validate  *validator.Validate

	gate       intent.Gate
	maxTokens  int
	llmTimeout time.Duration

	now   func() time.Time
	newID func() string
}

type Option func(*ResolverHandler)

func WithEventPublisher(p EventPublisher) Option {
	return func(h *ResolverHandler) {
		h.publisher = p
	}
}

func WithReadinessWindow(n int) Option {
	return func(h *ResolverHandler) {
		h.gate = intent.NewGate(n)
	}
}

func WithMaxTokens(n int) Option {
	return func(h *ResolverHandler) {
		if n > 0 {
			h.maxTokens = n
		}
	}
}

func WithLLMTimeout(d time.Duration) Option {
	return func(h *ResolverHandler) {
		h.llmTimeout = d
	}
}

func NewResolverHandler(provider llm.Provider, extractor intent.Extractor, creator CreationClient, log logger.ILogger, opts ...Option) (*ResolverHandler, error) {
	if provider == nil {
		return nil, errors.New("resolver: llm provider must not be nil")
	}
	if extractor == nil {
		return nil, errors.New("resolver: extractor must not be nil")
	}
	if creator == nil {
		return nil, errors.New("resolver: creation client must not be nil")
	}
	if log == nil {
		return nil, errors.New("resolver: logger must not be nil")
	}

	h := &ResolverHandler{
		provider:   provider,
		extractor:  extractor,
		creator:    creator,
		log:        log,
		validate:   validator.New(),
		gate:       intent.NewGate(intent.DefaultWindow),
		maxTokens:  defaultMaxTokens,
		llmTimeout: defaultLLMTimeout,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Turn is everything decided for one request: the readiness signals, one
// outcome per candidate (or a single reply) and the response sent back.
type Turn struct {
	Signals  intent.Signals       `json:"signals"`
	Outcomes []models.Outcome     `json:"outcomes"`
	Response *models.ChatResponse `json:"response"`
}

type candidateOutcome struct {
	candidate intent.Candidate
	outcome   models.Outcome
	result    *models.CreationResult
}

// Resolve runs one chat turn. Conversational failures (validation, extraction,
// dispatch, timeouts) come back as a normal response; only malformed requests
// and unexpected failures return an *Error.
func (h *ResolverHandler) Resolve(ctx context.Context, request *models.ChatRequest) (*models.ChatResponse, error) {
	t, err := h.ResolveTurn(ctx, request)
	if err != nil {
		return nil, err
	}
	return t.Response, nil
}

// ResolveTurn is Resolve with the decision trace kept.
func (h *ResolverHandler) ResolveTurn(ctx context.Context, request *models.ChatRequest) (*Turn, error) {
	if err := h.validateRequest(request); err != nil {
		return nil, newError(models.ErrorInvalidInput, "invalid_messages", err)
	}

	transcript, err := memory.NewTranscript(ctx, request.Messages, h.log)
	if err != nil {
		return nil, newError(models.ErrorInternal, "transcript_error", err)
	}
	messages, err := transcript.Messages(ctx)
	if err != nil {
		return nil, newError(models.ErrorInternal, "transcript_error", err)
	}
	window, err := transcript.Window(ctx, h.gate.Window)
	if err != nil {
		return nil, newError(models.ErrorInternal, "transcript_error", err)
	}

	signals := h.gate.Evaluate(window)
	h.log.Debug(module, "readiness evaluated", map[string]interface{}{
		"window":   len(window),
		"signals":  signals,
		"strategy": h.extractor.Name(),
	})

	llmRequest := &llm.Request{
		Prompt:    prompts.BuildPrompt(h.extractor.SystemPrompt(), messages),
		MaxTokens: h.maxTokens,
	}
	if signals.Ready && h.extractor.ExposesTools() {
		llmRequest.Tools = []llm.ToolDefinition{intent.ToolDefinition()}
	}

	gen, err := h.callLLM(ctx, llmRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.log.Warn(module, "llm call timed out", map[string]interface{}{"code": models.ErrorLLMTimeout, "error": err.Error()})
			outcome := models.Outcome{Kind: models.OutcomeRejected, Text: prompts.TimeoutMessage, Reason: llmTimeoutReason}
			return h.finish(signals, []models.Outcome{outcome}, prompts.TimeoutMessage, nil), nil
		}
		return nil, newError(models.ErrorLLMFailed, "llm_error", err)
	}

	extraction, err := h.extractor.Extract(gen)
	switch {
	case errors.Is(err, intent.ErrNoMatch) && signals.Ready:
		h.log.Info(module, "creation signalled but parameters not found", map[string]interface{}{"strategy": h.extractor.Name()})
		outcome := models.Outcome{Kind: models.OutcomeReply, Text: prompts.ReaskMessage}
		return h.finish(signals, []models.Outcome{outcome}, prompts.ReaskMessage, nil), nil
	case errors.Is(err, intent.ErrNoMatch):
		// Not ready: the trigger is ignored, the reply stands on its own.
	case err != nil:
		return nil, newError(models.ErrorInternal, "extraction_error", err)
	}

	if extraction == nil {
		extraction = &intent.Extraction{}
	}

	candidates := extraction.Candidates
	if len(candidates) > 0 && !signals.Ready {
		h.log.Warn(module, "ignoring creation request before confirmation", map[string]interface{}{
			"candidates": len(candidates),
			"strategy":   h.extractor.Name(),
		})
		candidates = nil
	}

	if len(candidates) == 0 {
		text := strings.TrimSpace(extraction.Text)
		if text == "" {
			text = prompts.FallbackMessage
		}
		outcome := models.Outcome{Kind: models.OutcomeReply, Text: text}
		return h.finish(signals, []models.Outcome{outcome}, text, nil), nil
	}

	results := h.dispatchAll(ctx, candidates)

	outcomes := make([]models.Outcome, 0, len(results))
	parts := []string{}
	if preamble := strings.TrimSpace(extraction.Preamble); preamble != "" {
		parts = append(parts, preamble)
	}
	var toolResults []models.ToolResult
	for _, r := range results {
		outcomes = append(outcomes, r.outcome)
		parts = append(parts, r.outcome.Text)
		if r.candidate.ToolCallID == "" {
			continue
		}
		tr := models.ToolResult{
			ToolCallID: r.candidate.ToolCallID,
			Name:       r.candidate.ToolName,
			Result:     r.result,
		}
		if r.outcome.Kind == models.OutcomeRejected {
			tr.Error = r.outcome.Reason
		}
		toolResults = append(toolResults, tr)
	}

	return h.finish(signals, outcomes, strings.Join(parts, "\n\n"), toolResults), nil
}

func (h *ResolverHandler) validateRequest(request *models.ChatRequest) error {
	if request == nil {
		return errors.New("request is required")
	}
	return h.validate.Struct(request)
}

func (h *ResolverHandler) callLLM(ctx context.Context, request *llm.Request) (*llm.Generation, error) {
	if h.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.llmTimeout)
		defer cancel()
	}
	return h.provider.Generate(ctx, request)
}

// dispatchAll resolves every candidate concurrently. A failing candidate does not
// cancel its siblings.
func (h *ResolverHandler) dispatchAll(ctx context.Context, candidates []intent.Candidate) []candidateOutcome {
	results := make([]candidateOutcome, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c intent.Candidate) {
			defer wg.Done()
			results[i] = h.resolveCandidate(ctx, c)
		}(i, c)
	}
	wg.Wait()

	return results
}

func (h *ResolverHandler) resolveCandidate(ctx context.Context, c intent.Candidate) candidateOutcome {
	out := candidateOutcome{candidate: c}

	if c.Err != nil {
		h.log.Warn(module, "malformed creation request", map[string]interface{}{
			"tool_call_id": c.ToolCallID,
			"error":        c.Err.Error(),
		})
		out.outcome = models.Outcome{
			Kind:   models.OutcomeRejected,
			Text:   prompts.RejectionMessage(malformedReason),
			Reason: malformedReason,
		}
		return out
	}

	req, verr := constellation.Validate(c.Params, h.creator.AltitudeMode())
	if verr != nil {
		h.log.Info(module, "creation request rejected", map[string]interface{}{
			"tool_call_id": c.ToolCallID,
			"constraint":   verr.Constraint,
			"reason":       verr.Reason,
		})
		out.outcome = models.Outcome{
			Kind:   models.OutcomeRejected,
			Text:   prompts.RejectionMessage(verr.Reason),
			Reason: verr.Reason,
		}
		return out
	}

	res, err := h.creator.Create(ctx, req)
	if err != nil {
		h.log.Error(module, "constellation creation failed", map[string]interface{}{
			"tool_call_id": c.ToolCallID,
			"error":        err.Error(),
		})
		out.outcome = models.Outcome{
			Kind:   models.OutcomeRejected,
			Text:   prompts.RetryMessage,
			Reason: dispatchFailedReason,
		}
		return out
	}

	confirmation := prompts.ConfirmationMessage(req, res.ConstellationID)
	out.outcome = models.Outcome{Kind: models.OutcomeCreated, Text: confirmation}
	out.result = &models.CreationResult{
		ConstellationID: res.ConstellationID,
		Request:         req,
		Message:         confirmation,
	}
	h.log.Info(module, "constellation created", map[string]interface{}{
		"constellation_id": res.ConstellationID,
		"satellites":       req.NumSatellites,
		"planes":           req.NumPlanes,
	})

	h.publishCreated(ctx, res.ConstellationID, req)
	return out
}

func (h *ResolverHandler) publishCreated(ctx context.Context, id string, req models.ConstellationRequest) {
	if h.publisher == nil {
		return
	}
	event := models.CreatedEvent{ConstellationID: id, Request: req, CreatedAt: h.now().UTC()}
	if err := h.publisher.PublishCreated(ctx, event); err != nil {
		h.log.Warn(module, "failed to publish created event", map[string]interface{}{"error": err.Error()})
	}
}

func (h *ResolverHandler) finish(signals intent.Signals, outcomes []models.Outcome, content string, toolResults []models.ToolResult) *Turn {
	h.log.Info(module, "turn resolved", map[string]interface{}{
		"ready":    signals.Ready,
		"outcomes": outcomeKinds(outcomes),
		"strategy": h.extractor.Name(),
	})
	return &Turn{
		Signals:  signals,
		Outcomes: outcomes,
		Response: &models.ChatResponse{
			ID:          h.newID(),
			Role:        models.RoleAssistant,
			Content:     content,
			ToolResults: toolResults,
			CreatedAt:   h.now().UTC(),
		},
	}
}

func outcomeKinds(outcomes []models.Outcome) []string {
	kinds := make([]string, len(outcomes))
	for i, o := range outcomes {
		kinds[i] = o.Kind
	}
	return kinds
}
