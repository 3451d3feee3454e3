package gemini

import (
	"context"
	"fmt"
	"iter"

	"dealagent-be/pkg/llm"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// GeminiProvider implements llm.LLMProvider on top of the official GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  modelName,
	}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{}, opts)

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		contents = append(contents, genai.NewContentFromText(msg.Content, mapRole(msg.Role)))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.modelFor(options), contents, genConfig(options))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return resp.Text(), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// Stream yields raw text fragments as the model produces them.
func (p *GeminiProvider) Stream(ctx context.Context, prompt string, opts ...llm.Option) iter.Seq2[string, error] {
	options := llm.ApplyOptions(llm.Options{}, opts)

	return func(yield func(string, error) bool) {
		contents := []*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		}

		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.modelFor(options), contents, genConfig(options)) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			if ctx.Err() != nil || resp == nil {
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}

func (p *GeminiProvider) modelFor(options *llm.Options) string {
	if options.Model != "" {
		return options.Model
	}
	return p.model
}

func genConfig(options *llm.Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if options.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(options.Temperature))
	}
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(options.MaxTokens)
	}
	return cfg
}

func mapRole(role string) genai.Role {
	// Gemini only knows "user" and "model"; system prompts are sent as user
	// turns the way the rest of the pipeline already formats them.
	if role == "assistant" || role == "model" {
		return genai.RoleModel
	}
	return genai.RoleUser
}
