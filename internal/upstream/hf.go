package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/sorenkld/hfbridge/internal/config"
	"github.com/sorenkld/hfbridge/internal/logger"
)

// requestTemplate is the fixed skeleton of an upstream generation request.
// return_full_text stays false so the upstream echoes only the completion,
// wait_for_model tolerates lazy model loading, and use_cache is disabled so
// repeated prompts still generate.
const requestTemplate = `{"inputs":"","parameters":{"return_full_text":false},"options":{"wait_for_model":true,"use_cache":false}}`

// HFClient implements Generator against the Hugging Face Inference API.
type HFClient struct {
	apiBase  string
	model    string
	token    string
	defaults config.GenerationConfig
	client   *http.Client
	logger   *logger.Logger
}

// NewHFClient creates a client for the configured model endpoint. The HTTP
// timeout covers the whole call; it defaults to 120 seconds because the
// upstream may need to load the model before generating.
func NewHFClient(cfg *config.Config) *HFClient {
	return &HFClient{
		apiBase:  strings.TrimRight(cfg.Upstream.APIBase, "/"),
		model:    cfg.Upstream.Model,
		token:    cfg.Upstream.Token,
		defaults: cfg.Generation,
		client:   &http.Client{Timeout: cfg.UpstreamTimeout()},
		logger:   logger.GetLogger().WithComponent("hf_client"),
	}
}

// Generate performs one blocking generation call and returns the normalized
// generated text. Errors come back classified as *APIError; no retries.
func (c *HFClient) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	body := c.buildRequestBody(req)

	url := c.apiBase + "/" + c.model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", NewUpstreamError(fmt.Sprintf("create request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	c.logger.Debug("Calling upstream model %s with %d byte payload", c.model, len(body))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).Error("Upstream call failed")
		return "", mapNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewUpstreamError(fmt.Sprintf("read upstream response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := mapHTTPError(resp.StatusCode, respBody)
		c.logger.Warn("Upstream returned HTTP %d: %s", resp.StatusCode, apiErr.Message)
		return "", apiErr
	}

	text := ExtractText(respBody)
	c.logger.Debug("Upstream call completed with %d characters of text", len(text))
	return text, nil
}

// buildRequestBody assembles the outbound JSON. Request-level values win
// over configured defaults; unset parameters are left out entirely.
func (c *HFClient) buildRequestBody(req *GenerationRequest) []byte {
	out := requestTemplate
	out, _ = sjson.Set(out, "inputs", req.Prompt)

	maxNewTokens := req.MaxNewTokens
	if maxNewTokens <= 0 {
		maxNewTokens = c.defaults.MaxNewTokens
	}
	if maxNewTokens > 0 {
		out, _ = sjson.Set(out, "parameters.max_new_tokens", maxNewTokens)
	}

	switch {
	case req.Temperature != nil:
		out, _ = sjson.Set(out, "parameters.temperature", *req.Temperature)
	case c.defaults.Temperature > 0:
		out, _ = sjson.Set(out, "parameters.temperature", c.defaults.Temperature)
	}

	switch {
	case req.TopP != nil:
		out, _ = sjson.Set(out, "parameters.top_p", *req.TopP)
	case c.defaults.TopP > 0:
		out, _ = sjson.Set(out, "parameters.top_p", c.defaults.TopP)
	}

	if req.DoSample || c.defaults.DoSample {
		out, _ = sjson.Set(out, "parameters.do_sample", true)
	}

	return []byte(out)
}
