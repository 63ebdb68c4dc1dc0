// Package llm is the boundary to the external language model.
package llm

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/policylens/survey-profiler/internal/config"
)

var (
	ErrEmptyCompletion = errors.New("model returned an empty completion")
	ErrModelDisabled   = errors.New("model completion is disabled: GEMINI_API_KEY is not set")
)

// Completer sends a single-turn prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type GenAIClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Completer = (*GenAIClient)(nil)

func NewGenAIClient(ctx context.Context, cfg *config.Config) (*GenAIClient, error) {
	if !cfg.Model.IsEnabled() {
		return nil, ErrModelDisabled
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.Model.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Model.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Model.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create genai client")
	}

	return &GenAIClient{
		client:      client,
		model:       cfg.Model.Name,
		temperature: cfg.Model.Temperature,
	}, nil
}

func (c *GenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	})
	if err != nil {
		return "", pkgerrors.Wrapf(err, "generate content with %s", c.model)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Disabled fails every completion. It keeps the service usable for intake and status
// queries when no API key is configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, string) (string, error) {
	return "", ErrModelDisabled
}

// IsDisabled reports whether c cannot produce completions at all.
func IsDisabled(c Completer) bool {
	switch c.(type) {
	case Disabled, *Disabled:
		return true
	}
	return false
}

// New returns the genai client when configured, Disabled otherwise.
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	if !cfg.Model.IsEnabled() {
		return Disabled{}, nil
	}
	return NewGenAIClient(ctx, cfg)
}
