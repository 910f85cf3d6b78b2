package model

import (
	"encoding/json"
	"time"
)

// Config holds the full pipeline configuration.
type Config struct {
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
	RAG    RAGConfig    `yaml:"rag" mapstructure:"rag"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Prompt PromptConfig `yaml:"prompt" mapstructure:"prompt"`
}

// SearchConfig selects and parameterizes the search backend.
type SearchConfig struct {
	// Backend is one of "keyword", "congress", "openalex".
	Backend    string `yaml:"backend" mapstructure:"backend"`
	Query      string `yaml:"query" mapstructure:"query"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`

	// Base URLs are overridable for testing.
	KeywordBaseURL    string `yaml:"keyword_base_url" mapstructure:"keyword_base_url"`
	CongressBaseURL   string `yaml:"congress_base_url" mapstructure:"congress_base_url"`
	CongressAPIURL    string `yaml:"congress_api_url" mapstructure:"congress_api_url"`
	CongressAPIKey    string `yaml:"congress_api_key" mapstructure:"congress_api_key"`
	OpenAlexBaseURL   string `yaml:"openalex_base_url" mapstructure:"openalex_base_url"`
	OpenAlexPageLimit int    `yaml:"openalex_page_limit" mapstructure:"openalex_page_limit"`
}

// HTTPConfig controls outbound HTTP behavior.
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`

	// Proxy settings. Empty values fall back to the environment.
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// RAGConfig controls chunking and similarity retrieval.
type RAGConfig struct {
	ChunkSize     int `yaml:"chunk_size" mapstructure:"chunk_size"`         // tokens per window
	ChunkOverlap  int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`   // token overlap between windows
	MaxChunkWords int `yaml:"max_chunk_words" mapstructure:"max_chunk_words"`
	TopK          int `yaml:"top_k" mapstructure:"top_k"`
	BatchSize     int `yaml:"batch_size" mapstructure:"batch_size"` // embedding batch ceiling
}

// LLMConfig configures the language-model provider.
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`
	Model          string `yaml:"model" mapstructure:"model"`
	EmbeddingModel string `yaml:"embedding_model" mapstructure:"embedding_model"`
	APIKey         string `yaml:"-" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"` // seconds per call
}

// CacheConfig configures the on-disk embedding cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
}

// ExportConfig configures the spreadsheet export step.
type ExportConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// PromptConfig carries the opaque prompt and schema content. The
// pipeline only fills placeholders and forwards the schema; it never
// interprets either.
type PromptConfig struct {
	ResearchGoal string          `yaml:"research_goal" mapstructure:"research_goal"`
	BasePrompt   string          `yaml:"base_prompt" mapstructure:"base_prompt"`
	SchemaName   string          `yaml:"schema_name" mapstructure:"schema_name"`
	Schema       json.RawMessage `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Backend:           "congress",
			MaxResults:        5,
			KeywordBaseURL:    "https://html.duckduckgo.com/html/",
			CongressBaseURL:   "https://www.congress.gov",
			CongressAPIURL:    "https://api.congress.gov/v3",
			OpenAlexBaseURL:   "https://api.openalex.org",
			OpenAlexPageLimit: 10000,
		},
		HTTP: HTTPConfig{
			Timeout:           60 * time.Second,
			UserAgent:         "llmsurfer/0.2 (+https://github.com/pnadel/llmsurfer)",
			MaxBodyBytes:      8_000_000,
			RequestsPerSecond: 2,
			Burst:             5,
			RespectRobots:     true,
		},
		RAG: RAGConfig{
			ChunkSize:     200,
			ChunkOverlap:  50,
			MaxChunkWords: 200,
			TopK:          5,
			BatchSize:     2048, // provider ceiling for one embeddings call
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        120,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "./data",
			MemoryTTL: 30 * time.Minute,
		},
		Export: ExportConfig{
			Enabled: true,
			Dir:     "./saved_searches",
		},
	}
}
