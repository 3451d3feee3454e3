package llm

import (
	"context"
	"iter"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any text-generation backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Stream sends a single prompt and yields incremental text fragments.
	// The sequence is finite and not restartable; fragments may be empty
	// and should be skipped by consumers. A yielded error ends the stream.
	Stream(ctx context.Context, prompt string, options ...Option) iter.Seq2[string, error]
}

// ApplyOptions folds functional options over provider defaults.
func ApplyOptions(defaults Options, opts []Option) *Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}
