// Package llm talks to language-model providers for classification and
// embeddings. Prompt and schema content are opaque pass-through values
// owned by configuration.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify sends a filled prompt and returns the model's structured
	// verdict.
	Classify(ctx context.Context, req ClassifyRequest) (*Verdict, error)

	// EmbedBatch embeds texts in one call, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single query text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for one classification call.
type ClassifyRequest struct {
	// Prompt is the fully filled prompt text.
	Prompt string

	// Schema constrains the response to a JSON document.
	Schema Schema
}

// Schema names a JSON schema the provider must conform the response to.
type Schema struct {
	Name       string
	Definition json.RawMessage
	Strict     bool
}

// ErrEmptyVerdict is returned when the model answers with null or an
// empty object. Callers treat it as a per-document skip.
var ErrEmptyVerdict = errors.New("empty verdict")

// Verdict is the classifier's output, field order preserved from the
// model's JSON so downstream records keep a stable column layout.
type Verdict struct {
	Fields []VerdictField
}

// VerdictField is one key/value pair of the verdict object.
type VerdictField struct {
	Key   string
	Value any
}

// Get returns the value for a key, if present.
func (v *Verdict) Get(key string) (any, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString returns the value for a key rendered as a string.
func (v *Verdict) GetString(key string) (string, bool) {
	val, ok := v.Get(key)
	if !ok {
		return "", false
	}
	if s, ok := val.(string); ok {
		return s, true
	}
	return fmt.Sprint(val), true
}

// ParseVerdict parses the raw model response as a strict JSON object.
// Anything other than a single well-formed object is an error; null or
// an empty object is ErrEmptyVerdict.
func ParseVerdict(content string) (*Verdict, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || trimmed == "null" {
		return nil, ErrEmptyVerdict
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("verdict is not a JSON object")
	}

	var verdict Verdict
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse verdict key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse verdict: non-string key %v", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("parse verdict value for %q: %w", key, err)
		}
		verdict.Fields = append(verdict.Fields, VerdictField{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, fmt.Errorf("parse verdict: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after verdict object")
	}

	if len(verdict.Fields) == 0 {
		return nil, ErrEmptyVerdict
	}
	return &verdict, nil
}
