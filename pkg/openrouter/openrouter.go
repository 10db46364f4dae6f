// Package openrouter wraps the OpenAI SDK configured for OpenRouter. It backs
// the responder's chit-chat fallback; the planning tools never touch it.
package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/worraphat/jarvis/agent/contract"
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true"`
	Model       string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	Temperature float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL     string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName    string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Enabled reports whether an API key is configured. Without one the
// responder runs with the fallback disabled.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type Client struct {
	api         openaisdk.Client
	model       string
	temperature float64
}

var _ contract.FallbackModel = (*Client)(nil)

// NewClient creates a chat client for OpenRouter. Returns nil when no API
// key is configured.
func NewClient(cfg Config) *Client {
	if !cfg.Enabled() {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	// OpenRouter attribution headers.
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	return &Client{
		api:         openaisdk.NewClient(opts...),
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
	}
}

// Chat sends the system prompt, prior turns, and the new user message, and
// returns the assistant's answer.
func (c *Client) Chat(ctx context.Context, system string, history []contract.Turn, user string) (string, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openaisdk.SystemMessage(system))
	}
	for _, turn := range history {
		switch turn.Role {
		case contract.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openaisdk.UserMessage(user))

	resp, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Messages:    messages,
		Temperature: openaisdk.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contract.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", contract.ErrModelInvoke)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
