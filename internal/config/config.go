package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full proxy configuration. It is loaded once at startup and
// read-only afterwards; nothing in the proxy mutates it per request.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Generation GenerationConfig `yaml:"generation"`
	Reasoning  ReasoningConfig  `yaml:"reasoning"`
	Stream     StreamConfig     `yaml:"stream"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// UpstreamConfig describes the Hugging Face Inference API endpoint the proxy
// forwards to. The bearer token is deliberately not part of the YAML file;
// it comes from the HF_API_TOKEN environment variable only.
type UpstreamConfig struct {
	APIBase        string `yaml:"api_base"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Token          string `yaml:"-"`
}

// GenerationConfig contains default sampling parameters sent upstream.
// Request-level temperature/max_tokens/top_p values override these.
type GenerationConfig struct {
	MaxNewTokens int     `yaml:"max_new_tokens"`
	Temperature  float64 `yaml:"temperature"`
	TopP         float64 `yaml:"top_p"`
	DoSample     bool    `yaml:"do_sample"`
}

// ReasoningConfig controls whether <think>...</think> spans emitted by the
// upstream model are passed through to callers or stripped.
type ReasoningConfig struct {
	Show bool `yaml:"show"`
}

// StreamConfig tunes the synthesized streaming output.
type StreamConfig struct {
	// ChunkDelayMS is the artificial pause between emitted chunks, purely a
	// presentation device. Zero disables pacing entirely.
	ChunkDelayMS int `yaml:"chunk_delay_ms"`
}

// DefaultConfig returns a configuration that works against the public
// Hugging Face Inference API once a token is provided.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Upstream: UpstreamConfig{
			APIBase:        "https://api-inference.huggingface.co/models",
			Model:          "deepseek-ai/DeepSeek-R1-Distill-Qwen-7B",
			TimeoutSeconds: 120,
		},
		Generation: GenerationConfig{
			MaxNewTokens: 512,
			Temperature:  0.7,
			TopP:         0.95,
			DoSample:     true,
		},
		Reasoning: ReasoningConfig{Show: false},
		Stream:    StreamConfig{ChunkDelayMS: 30},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. A missing HF_API_TOKEN is not a load error; it surfaces later
// as a configuration_error on each chat request.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overlays environment variables on top of the file values.
func (c *Config) ApplyEnv() {
	if token := os.Getenv("HF_API_TOKEN"); token != "" {
		c.Upstream.Token = token
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Port = n
		}
	}
}

// UpstreamTimeout returns the upstream request timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	if c.Upstream.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// ChunkDelay returns the inter-chunk pacing delay as a duration.
func (c *Config) ChunkDelay() time.Duration {
	if c.Stream.ChunkDelayMS <= 0 {
		return 0
	}
	return time.Duration(c.Stream.ChunkDelayMS) * time.Millisecond
}
