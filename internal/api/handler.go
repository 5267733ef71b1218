// Package api provides the caller-facing HTTP handlers. It implements an
// OpenAI-compatible chat completions surface in front of a single upstream
// text-generation endpoint, including health and model listing endpoints
// and the synthesized streaming mode.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sorenkld/hfbridge/internal/config"
	"github.com/sorenkld/hfbridge/internal/logger"
	"github.com/sorenkld/hfbridge/internal/models"
	"github.com/sorenkld/hfbridge/internal/streamer"
	"github.com/sorenkld/hfbridge/internal/translator"
	"github.com/sorenkld/hfbridge/internal/upstream"
)

// ServiceName identifies the proxy in the health endpoint.
const ServiceName = "hfbridge"

// doneEvent is the literal terminal server-sent event.
const doneEvent = "data: [DONE]\n\n"

// Handler holds the per-process collaborators of the HTTP surface. All of
// them are read-only after construction; requests share no mutable state.
type Handler struct {
	cfg        *config.Config
	translator *translator.Translator
	generator  upstream.Generator
	emulator   *streamer.Emulator
	started    int64
	logger     *logger.Logger
}

// NewHandler wires the handler with its collaborators.
func NewHandler(cfg *config.Config, gen upstream.Generator) *Handler {
	return &Handler{
		cfg:        cfg,
		translator: translator.New(cfg.Upstream.Model, cfg.Reasoning.Show),
		generator:  gen,
		emulator:   streamer.NewEmulator(cfg.ChunkDelay()),
		started:    time.Now().Unix(),
		logger:     logger.GetLogger().WithComponent("api"),
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg *config.Config, gen upstream.Generator) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	h := NewHandler(cfg, gen)
	h.Register(r)
	return r
}

// Register attaches all routes to the engine. Unknown paths and methods
// both return the 404 error body.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/v1/models", h.Models)
	r.POST("/v1/chat/completions", h.ChatCompletions)
	r.POST("/chat/completions", h.ChatCompletions)

	r.HandleMethodNotAllowed = true
	r.NoRoute(h.NotFound)
	r.NoMethod(h.NotFound)
}

// Health reports service status and the effective reasoning display flag.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"service":           ServiceName,
		"model":             h.cfg.Upstream.Model,
		"reasoning_display": h.cfg.Reasoning.Show,
	})
}

// Models lists the single configured upstream model.
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, models.ModelList{
		Object: "list",
		Data: []models.Model{
			{
				ID:      h.cfg.Upstream.Model,
				Object:  "model",
				Created: h.started,
				OwnedBy: ServiceName,
			},
		},
	})
}

// NotFound handles every unrecognized path or method.
func (h *Handler) NotFound(c *gin.Context) {
	writeError(c, upstream.NewInvalidRequestError(http.StatusNotFound, "not found"))
}

// ChatCompletions handles POST /v1/chat/completions and its unprefixed
// alias. The credential check happens before any upstream call so a
// misconfigured proxy fails fast.
func (h *Handler) ChatCompletions(c *gin.Context) {
	var req models.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, upstream.NewInvalidRequestError(http.StatusBadRequest, "invalid request body: "+err.Error()))
		return
	}
	if len(req.Messages) == 0 {
		writeError(c, upstream.NewInvalidRequestError(http.StatusBadRequest, "messages must not be empty"))
		return
	}

	if h.cfg.Upstream.Token == "" {
		h.logger.Error("Rejecting chat request: HF_API_TOKEN is not configured")
		writeError(c, upstream.NewConfigurationError("upstream API token is not configured; set HF_API_TOKEN"))
		return
	}

	prompt, err := h.translator.BuildPrompt(req.Messages)
	if err != nil {
		writeError(c, upstream.NewInvalidRequestError(http.StatusBadRequest, err.Error()))
		return
	}

	genReq := &upstream.GenerationRequest{
		Prompt:       prompt,
		MaxNewTokens: req.MaxTokens,
		Temperature:  req.Temperature,
		TopP:         req.TopP,
	}

	if req.Stream {
		h.streamCompletion(c, prompt, genReq)
		return
	}

	text, err := h.generator.Generate(c.Request.Context(), genReq)
	if err != nil {
		writeError(c, err)
		return
	}

	answer := h.finalAnswer(text)
	resp := h.translator.AssembleResponse(translator.NewCompletionID(), time.Now().Unix(), prompt, answer)
	c.JSON(http.StatusOK, resp)
}

// streamCompletion performs the upstream call and replays the completed
// text as a server-sent-event stream. The whole text is available before
// the first chunk goes out; an upstream failure produces a single inline
// error event followed by the terminal marker.
func (h *Handler) streamCompletion(c *gin.Context, prompt string, genReq *upstream.GenerationRequest) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		writeError(c, upstream.NewUpstreamError("streaming unsupported by connection"))
		return
	}

	ctx := c.Request.Context()

	text, err := h.generator.Generate(ctx, genReq)
	if err != nil {
		apiErr := upstream.AsAPIError(err)
		h.logger.WithError(apiErr).Error("Terminating stream with error event")
		h.writeEvent(c, flusher, models.ErrorResponse{
			Error: models.ErrorDetail{Message: apiErr.Message, Type: apiErr.Type, Code: apiErr.Code},
		})
		c.Writer.WriteString(doneEvent)
		flusher.Flush()
		return
	}

	answer := h.finalAnswer(text)
	id := translator.NewCompletionID()
	created := time.Now().Unix()

	first := true
	for chunk := range h.emulator.Stream(ctx, answer) {
		payload := h.translator.AssembleChunk(id, created, chunk.Content, first, chunk.Last)
		h.writeEvent(c, flusher, payload)
		first = false
	}

	if ctx.Err() != nil {
		// Client went away mid-stream; nothing left to write.
		return
	}

	c.Writer.WriteString(doneEvent)
	flusher.Flush()
}

// finalAnswer strips reasoning spans and guards the never-empty invariant:
// a completion that was nothing but reasoning markup falls back to the
// apology text instead of an empty assistant message.
func (h *Handler) finalAnswer(text string) string {
	answer := h.translator.StripReasoning(text)
	if strings.TrimSpace(answer) == "" {
		return upstream.FallbackText
	}
	return answer
}

// writeEvent serializes one payload as a "data:" server-sent event.
func (h *Handler) writeEvent(c *gin.Context, flusher http.Flusher, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal stream event")
		return
	}
	c.Writer.WriteString("data: ")
	c.Writer.Write(data)
	c.Writer.WriteString("\n\n")
	flusher.Flush()
}

// writeError renders any error as the JSON error body, classifying
// unrecognized errors as generic upstream failures.
func writeError(c *gin.Context, err error) {
	apiErr := upstream.AsAPIError(err)
	c.JSON(apiErr.Code, models.ErrorResponse{
		Error: models.ErrorDetail{
			Message: apiErr.Message,
			Type:    apiErr.Type,
			Code:    apiErr.Code,
		},
	})
}
