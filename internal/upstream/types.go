package upstream

import "context"

// GenerationRequest carries one prompt and its effective sampling
// parameters to the upstream API. Nil pointers and a zero MaxNewTokens mean
// "not set" and fall back to the configured defaults; an explicit zero
// temperature or top_p is passed through as-is.
type GenerationRequest struct {
	Prompt       string
	MaxNewTokens int
	Temperature  *float64
	TopP         *float64
	DoSample     bool
}

// Generator is the single outbound dependency of the proxy: one blocking
// text-generation call per inbound chat request. Implementations must not
// retry; a failed call fails the whole request.
type Generator interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}
