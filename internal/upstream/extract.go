package upstream

import (
	"strings"

	"github.com/tidwall/gjson"
)

// FallbackText is substituted whenever the upstream payload yields no
// usable text, so callers never receive an empty assistant message.
const FallbackText = "I apologize, but I could not generate a response. Please try again."

// payloadShape identifies which of the documented upstream response shapes
// a payload uses. The set is closed: anything else is shapeUnknown and
// falls back to the apology text.
type payloadShape int

const (
	shapeUnknown payloadShape = iota
	// shapeArray: [{"generated_text": "..."}]
	shapeArray
	// shapeObject: {"generated_text": "..."}
	shapeObject
	// shapeString: "..."
	shapeString
)

// classifyPayload inspects the parsed payload once and picks its shape.
func classifyPayload(payload gjson.Result) payloadShape {
	switch {
	case payload.IsArray():
		return shapeArray
	case payload.IsObject():
		return shapeObject
	case payload.Type == gjson.String:
		return shapeString
	default:
		return shapeUnknown
	}
}

// ExtractText normalizes an upstream generation payload to a plain string.
// The three documented shapes all reduce to the same text; an empty or
// unrecognized payload yields FallbackText.
func ExtractText(payload []byte) string {
	parsed := gjson.ParseBytes(payload)

	var text string
	switch classifyPayload(parsed) {
	case shapeArray:
		text = parsed.Get("0.generated_text").String()
	case shapeObject:
		text = parsed.Get("generated_text").String()
	case shapeString:
		text = parsed.String()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackText
	}
	return text
}
