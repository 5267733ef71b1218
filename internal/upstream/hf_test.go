package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/sorenkld/hfbridge/internal/config"
)

func f64(v float64) *float64 {
	return &v
}

func testConfig(apiBase string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Upstream.APIBase = apiBase
	cfg.Upstream.Model = "test-org/test-model"
	cfg.Upstream.Token = "test-token"
	return cfg
}

func TestHFClientGenerate(t *testing.T) {
	var capturedBody []byte
	var capturedAuth string
	var capturedPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		capturedPath = r.URL.Path
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"generated_text": "Hello there"}]`))
	}))
	defer srv.Close()

	client := NewHFClient(testConfig(srv.URL))

	text, err := client.Generate(context.Background(), &GenerationRequest{
		Prompt: "User: Hi\n\nAssistant:",
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)
	assert.Equal(t, "Bearer test-token", capturedAuth)
	assert.Equal(t, "/test-org/test-model", capturedPath)

	body := gjson.ParseBytes(capturedBody)
	assert.Equal(t, "User: Hi\n\nAssistant:", body.Get("inputs").String())
	assert.False(t, body.Get("parameters.return_full_text").Bool())
	assert.True(t, body.Get("options.wait_for_model").Bool())
	assert.False(t, body.Get("options.use_cache").Bool())

	// Config defaults flow into the parameters.
	assert.Equal(t, int64(512), body.Get("parameters.max_new_tokens").Int())
	assert.InDelta(t, 0.7, body.Get("parameters.temperature").Float(), 1e-9)
	assert.True(t, body.Get("parameters.do_sample").Bool())
}

func TestHFClientRequestOverrides(t *testing.T) {
	var capturedBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`[{"generated_text": "ok"}]`))
	}))
	defer srv.Close()

	client := NewHFClient(testConfig(srv.URL))

	_, err := client.Generate(context.Background(), &GenerationRequest{
		Prompt:       "Assistant:",
		MaxNewTokens: 32,
		Temperature:  f64(0.1),
		TopP:         f64(0.5),
	})

	require.NoError(t, err)
	body := gjson.ParseBytes(capturedBody)
	assert.Equal(t, int64(32), body.Get("parameters.max_new_tokens").Int())
	assert.InDelta(t, 0.1, body.Get("parameters.temperature").Float(), 1e-9)
	assert.InDelta(t, 0.5, body.Get("parameters.top_p").Float(), 1e-9)
}

func TestHFClientExplicitZeroTemperature(t *testing.T) {
	var capturedBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`[{"generated_text": "ok"}]`))
	}))
	defer srv.Close()

	client := NewHFClient(testConfig(srv.URL))

	// An explicit zero is a real request for greedy decoding; it must not
	// be replaced by the configured default.
	_, err := client.Generate(context.Background(), &GenerationRequest{
		Prompt:      "Assistant:",
		Temperature: f64(0),
	})

	require.NoError(t, err)
	body := gjson.ParseBytes(capturedBody)
	require.True(t, body.Get("parameters.temperature").Exists())
	assert.InDelta(t, 0.0, body.Get("parameters.temperature").Float(), 1e-9)
	// top_p was not set by the caller, so the default still applies.
	assert.InDelta(t, 0.95, body.Get("parameters.top_p").Float(), 1e-9)
}

func TestHFClientErrorClassification(t *testing.T) {
	testCases := []struct {
		name         string
		status       int
		body         string
		expectedType string
	}{
		{"model loading", http.StatusServiceUnavailable, `{"error": "Model is loading"}`, ErrTypeModelLoading},
		{"rate limited", http.StatusTooManyRequests, `{"error": "slow down"}`, ErrTypeRateLimit},
		{"generic failure", http.StatusInternalServerError, `{"error": "boom"}`, ErrTypeUpstream},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewHFClient(testConfig(srv.URL))
			_, err := client.Generate(context.Background(), &GenerationRequest{Prompt: "Assistant:"})

			require.Error(t, err)
			apiErr := AsAPIError(err)
			assert.Equal(t, tc.expectedType, apiErr.Type)
		})
	}
}

func TestHFClientNetworkError(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewHFClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), &GenerationRequest{Prompt: "Assistant:"})

	require.Error(t, err)
	assert.Equal(t, ErrTypeUpstream, AsAPIError(err).Type)
}

func TestHFClientEmptyGenerationFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text": ""}]`))
	}))
	defer srv.Close()

	client := NewHFClient(testConfig(srv.URL))
	text, err := client.Generate(context.Background(), &GenerationRequest{Prompt: "Assistant:"})

	require.NoError(t, err)
	assert.Equal(t, FallbackText, text)
}
