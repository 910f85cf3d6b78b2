package llm

import (
	"fmt"
	"strings"

	"github.com/pnadel/llmsurfer/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "":
		return NewOpenAIProvider(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}
