package translator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/sorenkld/hfbridge/internal/models"
)

// rolePrefixes maps chat roles to the prefix used in the synthesized prompt.
// Messages with any other role are skipped.
var rolePrefixes = map[string]string{
	"system":    "System",
	"user":      "User",
	"assistant": "Assistant",
}

// reasoningPattern matches one delimited reasoning span, non-greedy and
// spanning newlines.
var reasoningPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Translator converts between the chat-completion contract and the plain
// text-in/text-out shape of the upstream generation API. The reasoning
// display flag is injected here at construction so it can differ per
// deployment without touching package state.
type Translator struct {
	model         string
	showReasoning bool
}

// New creates a Translator for the given model name.
func New(model string, showReasoning bool) *Translator {
	return &Translator{
		model:         model,
		showReasoning: showReasoning,
	}
}

// Model returns the model name stamped on assembled responses.
func (t *Translator) Model() string {
	return t.model
}

// BuildPrompt concatenates the ordered messages into a single upstream
// prompt. Each recognized message contributes "{Prefix}: {content}\n\n" in
// input order; the prompt ends with a bare "Assistant:" cue so the upstream
// model continues the dialogue as the assistant. A message with a missing
// role or content fails the whole request.
func (t *Translator) BuildPrompt(messages []models.ChatCompletionMessage) (string, error) {
	var b strings.Builder
	for i, msg := range messages {
		if msg.Role == "" {
			return "", fmt.Errorf("message %d: missing role", i)
		}
		if msg.Content == "" {
			return "", fmt.Errorf("message %d: missing content", i)
		}
		prefix, ok := rolePrefixes[msg.Role]
		if !ok {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Assistant:")
	return b.String(), nil
}

// StripReasoning removes every <think>...</think> span from the text and
// trims the result, unless the translator was built to show reasoning, in
// which case the text passes through unchanged.
func (t *Translator) StripReasoning(text string) string {
	if t.showReasoning {
		return text
	}
	return strings.TrimSpace(reasoningPattern.ReplaceAllString(text, ""))
}

// AssembleResponse builds the non-streaming caller-facing response: one
// assistant choice with finish reason "stop" and whitespace-token usage
// counts for prompt and completion.
func (t *Translator) AssembleResponse(id string, created int64, prompt, completion string) *models.ChatCompletionResponse {
	promptTokens := countTokens(prompt)
	completionTokens := countTokens(completion)

	return &models.ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   t.model,
		Choices: []models.ChatCompletionChoice{
			{
				Index: 0,
				Message: models.ChatCompletionMessage{
					Role:    "assistant",
					Content: completion,
				},
				FinishReason: "stop",
			},
		},
		Usage: &models.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

// AssembleChunk builds one streamed chunk. The first chunk announces the
// assistant role in its delta; only the last chunk carries finish reason
// "stop".
func (t *Translator) AssembleChunk(id string, created int64, content string, first, last bool) *models.ChatCompletionChunk {
	choice := models.ChunkChoice{
		Index: 0,
		Delta: models.ChunkDelta{Content: content},
	}
	if first {
		choice.Delta.Role = "assistant"
	}
	if last {
		choice.FinishReason = "stop"
	}

	return &models.ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   t.model,
		Choices: []models.ChunkChoice{choice},
	}
}

// NewCompletionID returns a fresh chat completion identifier.
func NewCompletionID() string {
	return "chatcmpl-" + uuid.NewString()
}

// countTokens approximates a token count by splitting on whitespace.
func countTokens(s string) int {
	return len(strings.Fields(s))
}
